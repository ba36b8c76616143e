// licita/tools/internal/fakedoc/fakedoc.go

package fakedoc

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"rgehrsitz/licita/pkg/rules"
)

// clauses holds one sentence per catalog rule that its patterns recognise.
var clauses = map[string]string{
	"pnrs-geral": "A contratada deverá elaborar o PGRS em conformidade com a Política Nacional de Resíduos Sólidos.",
	"mtr":        "Cada transporte será acompanhado de MTR e a destinação final comprovada por CDF.",
	"fispq":      "Os produtos químicos deverão ser entregues com FISPQ atualizada conforme ABNT NBR 14725.",
	"conama-307": "Os resíduos da construção civil serão triados conforme a Resolução CONAMA 307.",
	"conama-430": "O lançamento de efluentes observará os parâmetros da Resolução CONAMA 430.",
	"iso-14001":  "Será aceita certificação ISO 14001 vigente ou controles equivalentes documentados.",
}

type Document struct {
	Category rules.Category `json:"category"`
	Text     string         `json:"-"`
	Included []string       `json:"included"`
}

type Generator struct {
	faker    *gofakeit.Faker
	coverage float64
}

// New returns a generator that includes each applicable clause with
// probability coverage. A zero seed picks a random one.
func New(seed uint64, coverage float64) *Generator {
	return &Generator{faker: gofakeit.New(seed), coverage: coverage}
}

// RandomCategory picks one of the known categories.
func (g *Generator) RandomCategory() rules.Category {
	cats := rules.Categories()
	return cats[g.faker.Number(0, len(cats)-1)].ID
}

// Document writes a tender-like text for category with filler paragraphs
// around the chosen clauses.
func (g *Generator) Document(category rules.Category) Document {
	doc := Document{Category: category, Included: []string{}}

	var b strings.Builder
	fmt.Fprintf(&b, "EDITAL DE LICITAÇÃO Nº %d/%d\n", g.faker.Number(1, 999), g.faker.Number(2019, 2026))
	fmt.Fprintf(&b, "Órgão: Prefeitura de %s\n", g.faker.City())
	fmt.Fprintf(&b, "Contratada: %s\n\n", g.faker.Company())

	for i, r := range rules.ForCategory(rules.Catalog(), category) {
		b.WriteString(g.faker.Sentence(g.faker.Number(8, 20)))
		b.WriteString("\n")
		clause, ok := clauses[r.ID]
		if !ok || g.faker.Float64Range(0, 1) >= g.coverage {
			continue
		}
		fmt.Fprintf(&b, "Cláusula %d. %s\n", i+1, clause)
		doc.Included = append(doc.Included, r.ID)
	}
	b.WriteString(g.faker.Sentence(12))
	b.WriteString("\n")

	doc.Text = b.String()
	return doc
}
