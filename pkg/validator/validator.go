package validator

import (
	"fmt"

	"rgehrsitz/licita/pkg/rules"
)

func ValidateRule(rule *rules.Rule) error {
	if rule.ID == "" {
		return fmt.Errorf("rule id is required")
	}
	if rule.Title == "" {
		return fmt.Errorf("rule title is required")
	}
	if rule.Summary == "" {
		return fmt.Errorf("rule summary is required")
	}
	if rule.Weight <= 0 {
		return fmt.Errorf("rule weight must be positive, got %d", rule.Weight)
	}
	if !rule.Severity.Valid() {
		return fmt.Errorf("invalid severity %q", rule.Severity)
	}
	// Zero patterns is allowed: the rule simply never matches.
	for i, p := range rule.Patterns {
		switch p.Kind {
		case rules.LiteralPattern:
			if p.Literal == "" {
				return fmt.Errorf("pattern %d: empty literal", i)
			}
		case rules.RegexPattern:
			if p.Regex == nil {
				return fmt.Errorf("pattern %d: regex not compiled", i)
			}
		default:
			return fmt.Errorf("pattern %d: unknown kind %v", i, p.Kind)
		}
	}
	for _, tag := range rule.Tags {
		if _, ok := rules.LookupCategory(string(tag)); !ok {
			return fmt.Errorf("unknown category tag %q", tag)
		}
	}
	return nil
}

func ValidateRuleset(rs []rules.Rule) error {
	seen := make(map[string]struct{}, len(rs))
	for i := range rs {
		if err := ValidateRule(&rs[i]); err != nil {
			return fmt.Errorf("rule %d (%q): %w", i, rs[i].ID, err)
		}
		if _, dup := seen[rs[i].ID]; dup {
			return fmt.Errorf("duplicate rule id %q", rs[i].ID)
		}
		seen[rs[i].ID] = struct{}{}
	}
	return nil
}
