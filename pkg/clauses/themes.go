// licita/pkg/clauses/themes.go

package clauses

import "strings"

type Theme struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Clause string `json:"-"`
}

var themes = []Theme{
	{"residuos", "Resíduos — MTR/CDF", "1. Resíduos: A contratada deverá comprovar a destinação adequada dos resíduos gerados na execução do contrato mediante apresentação de MTR/CDF válidos."},
	{"quimicos", "Químicos — FISPQ", "2. Produtos químicos: Será obrigatória a apresentação das FISPQ correspondentes a todos os produtos químicos empregados, conforme ABNT NBR 14725."},
	{"metas", "Metas e Indicadores", "3. Metas e Indicadores: Definem-se metas mensuráveis com unidade, baseline e prazo, acompanhadas por indicadores reportados periodicamente à fiscalização."},
	{"equivalencia", "Equivalência técnica", "4. Equivalência técnica: Especificações por desempenho, admitindo soluções equivalentes devidamente comprovadas por laudo ou certificação."},
	{"auditoria", "Auditoria e monitoramento", "5. Auditoria e monitoramento: A contratante poderá auditar documentos e resultados a qualquer tempo, mediante aviso prévio à contratada."},
	{"penalidades", "Penalidades", "6. Penalidades: O descumprimento sujeita a contratada às penalidades previstas no contrato e na legislação aplicável."},
}

func Themes() []Theme {
	out := make([]Theme, len(themes))
	copy(out, themes)
	return out
}

// Generate emits the clauses for the selected theme keys in catalog order,
// separated by blank lines. Unknown keys are ignored.
func Generate(selected []string) string {
	want := make(map[string]bool, len(selected))
	for _, key := range selected {
		want[key] = true
	}
	var blocks []string
	for _, t := range themes {
		if want[t.Key] {
			blocks = append(blocks, t.Clause)
		}
	}
	return strings.Join(blocks, "\n\n")
}
