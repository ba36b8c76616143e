// licita/pkg/analyzer/analyzer.go

package analyzer

import (
	"math"
	"strings"

	"rgehrsitz/licita/pkg/rules"
)

// MissingMandatoryPenalty is subtracted once from the raw score when at
// least one mustHave rule did not match.
const MissingMandatoryPenalty = 20

const (
	matchedPrefix    = "Atende parcialmente/totalmente: "
	mandatoryPrefix  = "🔴 Ausência de menção exigida: "
	notFoundPrefix   = "⚠️ Não identificado: "
	findingTitleGlue = " — "
	commentTitleGlue = ". "
)

type Finding struct {
	RuleID   string         `json:"ruleId"`
	Title    string         `json:"title"`
	Matched  bool           `json:"matched"`
	Evidence []string       `json:"evidence"`
	Comment  string         `json:"comment"`
	Severity rules.Severity `json:"severity"`
	Weight   int            `json:"weight"`
	MustHave bool           `json:"mustHave"`
}

type Report struct {
	Findings []Finding `json:"findings"`
	Score    int       `json:"score"`
}

// Analyze evaluates every rule against text, in order, and scores the result.
// It never fails: empty text or an empty rule set still yield a Report.
//
// Regex patterns run on Go's RE2 engine, so each evaluation is linear in the
// text length; total work is O(rules × patterns × len(text)). Patterns are
// trusted configuration, not user input.
func Analyze(text string, rs []rules.Rule) Report {
	lowered := strings.ToLower(text)
	findings := make([]Finding, 0, len(rs))
	total, got := 0, 0
	missingMandatory := false

	for _, r := range rs {
		evidence := make([]string, 0)
		matched := false
		for _, p := range r.Patterns {
			if ev, ok := p.Find(text, lowered); ok {
				matched = true
				evidence = append(evidence, ev)
			}
		}

		findings = append(findings, Finding{
			RuleID:   r.ID,
			Title:    r.Title + findingTitleGlue + r.Source,
			Matched:  matched,
			Evidence: evidence,
			Comment:  comment(r, matched),
			Severity: r.Severity,
			Weight:   r.Weight,
			MustHave: r.MustHave,
		})

		total += r.Weight
		if matched {
			got += r.Weight
		} else if r.MustHave {
			missingMandatory = true
		}
	}

	return Report{Findings: findings, Score: score(got, total, missingMandatory)}
}

func comment(r rules.Rule, matched bool) string {
	switch {
	case matched:
		return matchedPrefix + r.Summary
	case r.MustHave:
		return mandatoryPrefix + r.Title + commentTitleGlue + r.Summary
	default:
		return notFoundPrefix + r.Title + commentTitleGlue + r.Summary
	}
}

func score(got, total int, missingMandatory bool) int {
	raw := 0
	if total > 0 {
		raw = int(math.Floor(100*float64(got)/float64(total) + 0.5))
	}
	if missingMandatory {
		raw -= MissingMandatoryPenalty
	}
	if raw < 0 {
		return 0
	}
	return raw
}

// Matched returns the findings whose rule matched, in report order.
func (r Report) Matched() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Matched {
			out = append(out, f)
		}
	}
	return out
}

// Missing returns the unmatched findings, in report order.
func (r Report) Missing() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if !f.Matched {
			out = append(out, f)
		}
	}
	return out
}
