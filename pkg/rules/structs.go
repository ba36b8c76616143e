// licita/pkg/rules/structs.go

package rules

// Severity is a display weight only; it never enters score arithmetic.
type Severity string

const (
	SeverityInfo Severity = "info"
	SeverityWarn Severity = "warn"
	SeverityHigh Severity = "high"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarn, SeverityHigh:
		return true
	default:
		return false
	}
}

// Rule is a static regulatory check. Rules are built once and never mutated.
type Rule struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Source   string     `json:"source"`
	Summary  string     `json:"summary"`
	Patterns []Pattern  `json:"patterns"`
	Severity Severity   `json:"severity"`
	Weight   int        `json:"weight"`
	MustHave bool       `json:"mustHave,omitempty"`
	Tags     []Category `json:"tags,omitempty"`
}

// AppliesTo reports whether the rule is in scope for the category. A rule
// without tags applies everywhere.
func (r Rule) AppliesTo(category Category) bool {
	if len(r.Tags) == 0 {
		return true
	}
	for _, tag := range r.Tags {
		if tag == category {
			return true
		}
	}
	return false
}
