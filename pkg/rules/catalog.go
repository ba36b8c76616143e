// licita/pkg/rules/catalog.go

package rules

var allCategories = []Category{
	CategoryObras, CategoryServicos, CategoryAquisicoes, CategoryQuimicos, CategorySaude,
	CategorySaneamento, CategoryResiduos, CategoryEnergia, CategoryTI,
}

var catalog = []Rule{
	{
		ID:      "pnrs-geral",
		Title:   "Política Nacional de Resíduos Sólidos (PNRS)",
		Source:  "Lei 12.305/2010; Dec. 10.936/2022",
		Summary: "PGRS, responsabilidade compartilhada, logística reversa e metas.",
		Patterns: []Pattern{
			Regex(`(?i)pnrs`),
			Regex(`(?i)pol[ií]tica nacional de res[íi]duos`),
			Regex(`(?i)pgrs|plano de gerenciamento de res[íi]duos`),
			Regex(`(?i)responsabilidade compartilhada`),
			Regex(`(?i)log[íi]stica reversa`),
			Regex(`(?i)metas? (quantitativas|indicadores?)`),
		},
		Severity: SeverityWarn,
		Weight:   8,
		Tags:     allCategories,
	},
	{
		ID:      "mtr",
		Title:   "Manifesto de Transporte de Resíduos (MTR) + CDF",
		Source:  "SINIR / órgãos estaduais",
		Summary: "Apresentar MTR no transporte e CDF após destinação.",
		Patterns: []Pattern{
			Regex(`(?i)\bmtr\b`),
			Regex(`(?i)manifesto de transporte de res[íi]duos`),
			Regex(`(?i)\bcdf\b`),
			Regex(`(?i)certificado de destina[çc][aã]o`),
		},
		Severity: SeverityHigh,
		Weight:   9,
		MustHave: true,
		Tags: []Category{
			CategoryServicos, CategoryResiduos, CategoryObras,
			CategoryAquisicoes, CategorySaude, CategorySaneamento,
		},
	},
	{
		ID:      "fispq",
		Title:   "FISPQ (ABNT NBR 14725)",
		Source:  "ABNT NBR 14725",
		Summary: "FISPQ atualizada e compatível para produtos perigosos/químicos.",
		Patterns: []Pattern{
			Regex(`(?i)\bfispq\b`),
			Regex(`(?i)nbr\s*14725`),
			Regex(`(?i)perigoso|perigosos`),
			Regex(`(?i)sa[úu]de|seguran[çc]a`),
		},
		Severity: SeverityHigh,
		Weight:   8,
		Tags:     []Category{CategoryQuimicos, CategorySaude, CategoryObras, CategoryServicos},
	},
	{
		ID:      "conama-307",
		Title:   "Resíduos da Construção Civil — RCD",
		Source:  "CONAMA 307/2002",
		Summary: "Classificação, triagem e destinação adequada (aterro classe, reciclagem).",
		Patterns: []Pattern{
			Regex(`(?i)conama\s*307`),
			Regex(`(?i)res[íi]duos da constru[çc][aã]o`),
			Regex(`(?i)aterro classe`),
			Regex(`(?i)rcd`),
		},
		Severity: SeverityWarn,
		Weight:   8,
		Tags:     []Category{CategoryObras},
	},
	{
		ID:      "conama-430",
		Title:   "Efluentes Líquidos",
		Source:  "CONAMA 430/2011",
		Summary: "Parâmetros/condições de lançamento e monitoramento.",
		Patterns: []Pattern{
			Regex(`(?i)conama\s*430`),
			Regex(`(?i)efluentes?`),
			Regex(`(?i)lan[çc]amento`),
			Regex(`(?i)monitoramento`),
		},
		Severity: SeverityWarn,
		Weight:   7,
		Tags:     []Category{CategorySaneamento, CategoryObras, CategoryServicos, CategorySaude},
	},
	{
		ID:      "iso-14001",
		Title:   "Sistema de Gestão Ambiental — ISO 14001",
		Source:  "ISO 14001",
		Summary: "SGA certificado vigente (ou controles equivalentes documentados).",
		Patterns: []Pattern{
			Regex(`(?i)iso\s*14001`),
			Regex(`(?i)sistema de gest[aã]o ambiental`),
			Regex(`(?i)\bSGA\b`),
		},
		Severity: SeverityInfo,
		Weight:   3,
		Tags:     allCategories,
	},
}

// Catalog returns the built-in rule table. The slice is fresh; the rules
// share their pattern and tag slices with the table and must not be mutated.
func Catalog() []Rule {
	out := make([]Rule, len(catalog))
	copy(out, catalog)
	return out
}
