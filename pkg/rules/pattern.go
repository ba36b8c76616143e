// licita/pkg/rules/pattern.go

package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type PatternKind int

const (
	LiteralPattern PatternKind = iota
	RegexPattern
)

func (k PatternKind) String() string {
	switch k {
	case LiteralPattern:
		return "literal"
	case RegexPattern:
		return "regex"
	default:
		return fmt.Sprintf("PatternKind(%d)", int(k))
	}
}

// Pattern is either a case-insensitive literal substring or a compiled
// regular expression. Regex patterns carry their own case folding ((?i)).
type Pattern struct {
	Kind    PatternKind
	Literal string
	Regex   *regexp.Regexp
}

func Literal(s string) Pattern {
	return Pattern{Kind: LiteralPattern, Literal: s}
}

// Regex compiles expr and panics if it is invalid. Use it for static tables.
func Regex(expr string) Pattern {
	return Pattern{Kind: RegexPattern, Regex: regexp.MustCompile(expr)}
}

func CompileRegex(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{Kind: RegexPattern, Regex: re}, nil
}

// Find reports whether the pattern occurs in text and returns the evidence:
// the pattern itself for literals, the first full match for regexes.
// lowered must be strings.ToLower(text); callers compute it once per document.
func (p Pattern) Find(text, lowered string) (string, bool) {
	switch p.Kind {
	case LiteralPattern:
		if strings.Contains(lowered, strings.ToLower(p.Literal)) {
			return p.Literal, true
		}
	case RegexPattern:
		if p.Regex == nil {
			return "", false
		}
		if loc := p.Regex.FindStringIndex(text); loc != nil {
			return text[loc[0]:loc[1]], true
		}
	}
	return "", false
}

func (p Pattern) String() string {
	switch p.Kind {
	case LiteralPattern:
		return p.Literal
	case RegexPattern:
		if p.Regex == nil {
			return ""
		}
		return p.Regex.String()
	default:
		return ""
	}
}

// PatternSpec is the serialized form of a Pattern: exactly one field is set.
type PatternSpec struct {
	Literal string `json:"literal,omitempty" yaml:"literal,omitempty"`
	Regex   string `json:"regex,omitempty" yaml:"regex,omitempty"`
}

func (s PatternSpec) Compile() (Pattern, error) {
	switch {
	case s.Literal != "" && s.Regex != "":
		return Pattern{}, errors.New("pattern must set either literal or regex, not both")
	case s.Literal != "":
		return Literal(s.Literal), nil
	case s.Regex != "":
		p, err := CompileRegex(s.Regex)
		if err != nil {
			return Pattern{}, fmt.Errorf("invalid regex %q: %w", s.Regex, err)
		}
		return p, nil
	default:
		return Pattern{}, errors.New("empty pattern")
	}
}

func (p Pattern) Spec() PatternSpec {
	if p.Kind == RegexPattern {
		return PatternSpec{Regex: p.String()}
	}
	return PatternSpec{Literal: p.Literal}
}

func (p Pattern) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Spec())
}

func (p *Pattern) UnmarshalJSON(data []byte) error {
	var spec PatternSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return err
	}
	compiled, err := spec.Compile()
	if err != nil {
		return err
	}
	*p = compiled
	return nil
}
