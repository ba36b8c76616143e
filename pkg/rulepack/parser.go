// licita/pkg/rulepack/parser.go

package rulepack

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"rgehrsitz/licita/pkg/logging"
	"rgehrsitz/licita/pkg/rules"
	"rgehrsitz/licita/pkg/validator"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Pack is the on-disk form of a rule table.
type Pack struct {
	Rules []PackRule `json:"rules" yaml:"rules"`
}

type PackRule struct {
	ID       string              `json:"id" yaml:"id"`
	Title    string              `json:"title" yaml:"title"`
	Source   string              `json:"source" yaml:"source"`
	Summary  string              `json:"summary" yaml:"summary"`
	Patterns []rules.PatternSpec `json:"patterns" yaml:"patterns"`
	Severity string              `json:"severity" yaml:"severity"`
	Weight   int                 `json:"weight" yaml:"weight"`
	MustHave bool                `json:"mustHave,omitempty" yaml:"mustHave,omitempty"`
	Tags     []string            `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// FormatFor picks the pack format from the file extension; anything that is
// not .yaml/.yml is read as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func Load(path string) ([]rules.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, logging.NewError(logging.ErrorTypeParse, "failed to read rule pack", err,
			map[string]interface{}{"path": path})
	}
	rs, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, err
	}
	logging.Logger.Info().Str("path", path).Int("rules", len(rs)).Msg("Loaded rule pack")
	return rs, nil
}

// Parse decodes a rule pack, compiles its patterns and validates the result.
func Parse(data []byte, format Format) ([]rules.Rule, error) {
	logging.Logger.Debug().Str("format", string(format)).Int("bytes", len(data)).Msg("Parsing rule pack")

	var pack Pack
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &pack)
	case FormatJSON:
		err = json.Unmarshal(data, &pack)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, logging.NewError(logging.ErrorTypeParse, "invalid rule pack", err, nil)
	}
	if len(pack.Rules) == 0 {
		return nil, logging.NewError(logging.ErrorTypeParse, "missing rules field", nil, nil)
	}

	out := make([]rules.Rule, 0, len(pack.Rules))
	for _, pr := range pack.Rules {
		r, err := compileRule(pr)
		if err != nil {
			logging.Logger.Error().Err(err).Str("rule", pr.ID).Msg("Invalid rule")
			return nil, logging.NewError(logging.ErrorTypeParse, fmt.Sprintf("invalid rule '%s'", pr.ID), err,
				map[string]interface{}{"rule": pr.ID})
		}
		out = append(out, r)
	}

	if err := validator.ValidateRuleset(out); err != nil {
		return nil, logging.NewError(logging.ErrorTypeValidation, "rule pack failed validation", err, nil)
	}
	return out, nil
}

func compileRule(pr PackRule) (rules.Rule, error) {
	if pr.ID == "" {
		return rules.Rule{}, errors.New("rule id is required")
	}
	r := rules.Rule{
		ID:       pr.ID,
		Title:    pr.Title,
		Source:   pr.Source,
		Summary:  pr.Summary,
		Severity: rules.Severity(strings.ToLower(strings.TrimSpace(pr.Severity))),
		Weight:   pr.Weight,
		MustHave: pr.MustHave,
	}
	for i, spec := range pr.Patterns {
		p, err := spec.Compile()
		if err != nil {
			return rules.Rule{}, fmt.Errorf("pattern %d: %w", i, err)
		}
		r.Patterns = append(r.Patterns, p)
	}
	for _, tag := range pr.Tags {
		r.Tags = append(r.Tags, rules.Category(strings.ToLower(strings.TrimSpace(tag))))
	}
	return r, nil
}

// Encode writes rs back to pack form. Useful to dump the built-in catalog as
// a starting point for a jurisdiction-specific pack.
func Encode(rs []rules.Rule, format Format) ([]byte, error) {
	pack := Pack{Rules: make([]PackRule, 0, len(rs))}
	for _, r := range rs {
		pr := PackRule{
			ID:       r.ID,
			Title:    r.Title,
			Source:   r.Source,
			Summary:  r.Summary,
			Severity: string(r.Severity),
			Weight:   r.Weight,
			MustHave: r.MustHave,
		}
		for _, p := range r.Patterns {
			pr.Patterns = append(pr.Patterns, p.Spec())
		}
		for _, tag := range r.Tags {
			pr.Tags = append(pr.Tags, string(tag))
		}
		pack.Rules = append(pack.Rules, pr)
	}
	if format == FormatYAML {
		return yaml.Marshal(pack)
	}
	return json.MarshalIndent(pack, "", "  ")
}
