// licita/pkg/rules/categories.go

package rules

// Category identifies a procurement document type.
type Category string

const (
	CategoryObras      Category = "obras"
	CategoryServicos   Category = "servicos"
	CategoryAquisicoes Category = "aquisicoes"
	CategoryQuimicos   Category = "quimicos"
	CategorySaude      Category = "saude"
	CategorySaneamento Category = "saneamento"
	CategoryResiduos   Category = "residuos"
	CategoryEnergia    Category = "energia"
	CategoryTI         Category = "ti"
)

type CategoryInfo struct {
	ID    Category `json:"id"`
	Label string   `json:"label"`
	Icon  string   `json:"icon"`
	Help  []string `json:"help"`
}

var categoryInfo = []CategoryInfo{
	{ID: CategoryObras, Label: "Obras", Icon: "🔨", Help: []string{"RCD (CONAMA 307)", "PGRS de obra", "Reaproveitamento/aterro classe"}},
	{ID: CategoryServicos, Label: "Serviços", Icon: "🧹", Help: []string{"PNRS/PGRS", "MTR + CDF", "Indicadores e EPIs"}},
	{ID: CategoryAquisicoes, Label: "Aquisições", Icon: "🛒", Help: []string{"Logística reversa (embalagens)", "Rotulagem ambiental", "Substâncias restritas"}},
	{ID: CategoryQuimicos, Label: "Químicos", Icon: "⚗️", Help: []string{"FISPQ (NBR 14725)", "Armazenamento", "Resposta a emergências"}},
	{ID: CategorySaude, Label: "Saúde", Icon: "🏥", Help: []string{"RSS (RDC/ANVISA; CONAMA 358)", "PGRSS", "Infectantes"}},
	{ID: CategorySaneamento, Label: "Efluentes", Icon: "💧", Help: []string{"CONAMA 430", "Parâmetros de lançamento", "Monitoramento"}},
	{ID: CategoryResiduos, Label: "Resíduos", Icon: "♻️", Help: []string{"PNRS", "MTR/CDF", "Rastreabilidade e licenças"}},
	{ID: CategoryEnergia, Label: "Energia", Icon: "🔋", Help: []string{"Eficiência/renováveis", "Inventário GEE (se aplicável)", "I-REC (se aplicável)"}},
	{ID: CategoryTI, Label: "TI", Icon: "🖥️", Help: []string{"Logística reversa de eletroeletrônicos", "Baterias", "Descarte seguro de dados"}},
}

func Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(categoryInfo))
	copy(out, categoryInfo)
	return out
}

func LookupCategory(id string) (CategoryInfo, bool) {
	for _, c := range categoryInfo {
		if string(c.ID) == id {
			return c, true
		}
	}
	return CategoryInfo{}, false
}

// ForCategory returns the rules that apply to category as a new slice,
// preserving order. An empty category means no filtering.
func ForCategory(rs []Rule, category Category) []Rule {
	out := make([]Rule, 0, len(rs))
	for _, r := range rs {
		if category == "" || r.AppliesTo(category) {
			out = append(out, r)
		}
	}
	return out
}
