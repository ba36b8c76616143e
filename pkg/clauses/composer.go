// licita/pkg/clauses/composer.go

package clauses

import (
	"fmt"
	"strings"

	"rgehrsitz/licita/pkg/analyzer"
)

const (
	missingHeader     = "Itens ausentes ou não identificados:"
	nothingCritical   = "Nenhuma lacuna crítica identificada nas regras avaliadas."
	suggestionsHeader = "Sugestões de cláusulas:"
	integratedHeader  = "Texto integrado sugerido:"
	mandatoryMarker   = " (obrigatório)"
)

var suggestions = map[string]string{
	"pnrs-geral": `A contratada cumprirá integralmente a Política Nacional de Resíduos Sólidos (Lei 12.305/2010; Decreto 10.936/2022),
mantendo PGRS atualizado e aderente às atividades, com metas quantitativas, indicadores e definição de responsabilidades,
incluindo, quando aplicável, logística reversa de produtos e embalagens.`,

	"mtr": `Todo transporte de resíduos será acompanhado do Manifesto de Transporte de Resíduos (MTR) e, após a destinação,
será apresentado o Certificado/Comprovante de Destinação Final (CDF) emitido pelo sistema competente (SINIR/órgãos estaduais).
A ausência de MTR ou de CDF sujeitará a contratada às sanções previstas.`,

	"fispq": `Para produtos químicos/perigosos utilizados ou fornecidos, a contratada apresentará FISPQ atualizada conforme ABNT NBR 14725,
assegurando comunicação de perigos, procedimentos de segurança, armazenamento adequado e atendimento a emergências.`,

	"conama-307": `Para resíduos da construção civil (RCD), será realizada classificação, triagem e destinação adequada,
priorizando reaproveitamento/reciclagem e utilizando aterros classe apropriados apenas quando não houver alternativa.`,

	"conama-430": `O lançamento de efluentes líquidos observará os parâmetros e condições da Resolução CONAMA 430/2011,
cabendo à contratada manter plano de monitoramento com laudos periódicos apresentados à fiscalização do contrato.`,

	"iso-14001": `A contratada manterá Sistema de Gestão Ambiental certificado segundo a ISO 14001 ou, alternativamente,
controles equivalentes documentados (política, aspectos e impactos, objetivos e auditorias internas).`,
}

// Suggestion returns the fixed clause text for a rule id.
func Suggestion(ruleID string) (string, bool) {
	s, ok := suggestions[ruleID]
	return s, ok
}

// GenericSuggestion is used when no template exists for a rule.
func GenericSuggestion(title string) string {
	return fmt.Sprintf("Incluir cláusula específica sobre: %s.", title)
}

// Gaps returns the unmatched findings with mandatory ones first. Relative
// order inside each group is the report order.
func Gaps(report analyzer.Report) []analyzer.Finding {
	var mandatory, rest []analyzer.Finding
	for _, f := range report.Findings {
		if f.Matched {
			continue
		}
		if f.MustHave {
			mandatory = append(mandatory, f)
		} else {
			rest = append(rest, f)
		}
	}
	return append(mandatory, rest...)
}

// Compose builds the suggested clause text for a report: a header listing
// the gaps, one block per gap, and an integrated text made only of the
// template clauses.
func Compose(report analyzer.Report) string {
	gaps := Gaps(report)
	if len(gaps) == 0 {
		return nothingCritical + "\n"
	}

	var b strings.Builder
	b.WriteString(missingHeader + "\n")
	for _, f := range gaps {
		b.WriteString("- " + f.Title)
		if f.MustHave {
			b.WriteString(mandatoryMarker)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + suggestionsHeader + "\n")
	var bodies []string
	for _, f := range gaps {
		body, ok := Suggestion(f.RuleID)
		if ok {
			bodies = append(bodies, body)
		} else {
			body = GenericSuggestion(f.Title)
		}
		fmt.Fprintf(&b, "\n[%s]\n%s\n", f.Title, body)
	}

	b.WriteString("\n" + integratedHeader + "\n\n")
	b.WriteString(strings.Join(bodies, "\n\n"))
	b.WriteString("\n")
	return b.String()
}
