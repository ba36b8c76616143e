// licita/pkg/rules/rules_test.go

package rules

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func find(p Pattern, text string) (string, bool) {
	return p.Find(text, strings.ToLower(text))
}

func TestLiteralPatternIsCaseInsensitive(t *testing.T) {
	evidence, ok := find(Literal("MTR"), "apresentar mtr assinado")
	assert.True(t, ok)
	assert.Equal(t, "MTR", evidence, "literal evidence is the pattern itself")

	_, ok = find(Literal("fispq"), "nada aqui")
	assert.False(t, ok)
}

func TestRegexPatternRecordsFirstMatch(t *testing.T) {
	p := Regex(`(?i)efluentes?`)
	evidence, ok := find(p, "Tratamento de EFLUENTE e depois efluentes industriais")
	assert.True(t, ok)
	assert.Equal(t, "EFLUENTE", evidence)
}

func TestRegexPatternDoesNotFoldCaseUnlessDeclared(t *testing.T) {
	_, ok := find(Regex(`SGA`), "certificação sga vigente")
	assert.False(t, ok)

	evidence, ok := find(Regex(`(?i)\bSGA\b`), "certificação sga vigente")
	assert.True(t, ok)
	assert.Equal(t, "sga", evidence)
}

func TestRegexPatternHandlesAccents(t *testing.T) {
	evidence, ok := find(Regex(`(?i)log[íi]stica reversa`), "Prever LOGÍSTICA REVERSA das embalagens")
	assert.True(t, ok)
	assert.Equal(t, "LOGÍSTICA REVERSA", evidence)
}

func TestZeroValueRegexPatternNeverMatches(t *testing.T) {
	_, ok := find(Pattern{Kind: RegexPattern}, "anything")
	assert.False(t, ok)
}

func TestCompileRegexRejectsInvalidExpression(t *testing.T) {
	_, err := CompileRegex(`(unclosed`)
	assert.Error(t, err)
}

func TestPatternJSON(t *testing.T) {
	var ps []Pattern
	err := json.Unmarshal([]byte(`[{"literal":"MTR"},{"regex":"(?i)\\bcdf\\b"}]`), &ps)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, LiteralPattern, ps[0].Kind)
	assert.Equal(t, RegexPattern, ps[1].Kind)

	out, err := json.Marshal(ps)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"literal":"MTR"},{"regex":"(?i)\\bcdf\\b"}]`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"literal":"a","regex":"b"}`), &Pattern{}))
	assert.Error(t, json.Unmarshal([]byte(`{}`), &Pattern{}))
	assert.Error(t, json.Unmarshal([]byte(`{"regex":"(bad"}`), &Pattern{}))
}

func TestCatalogInvariants(t *testing.T) {
	rs := Catalog()
	require.Len(t, rs, 6)

	seen := map[string]bool{}
	for _, r := range rs {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
		assert.Greater(t, r.Weight, 0, r.ID)
		assert.True(t, r.Severity.Valid(), r.ID)
		assert.NotEmpty(t, r.Patterns, r.ID)
		for _, tag := range r.Tags {
			_, ok := LookupCategory(string(tag))
			assert.True(t, ok, "rule %s has unknown tag %s", r.ID, tag)
		}
	}

	mandatory := 0
	for _, r := range rs {
		if r.MustHave {
			mandatory++
			assert.Equal(t, "mtr", r.ID)
		}
	}
	assert.Equal(t, 1, mandatory)
}

func TestCatalogReturnsFreshSlice(t *testing.T) {
	a := Catalog()
	a[0] = Rule{ID: "changed"}
	assert.Equal(t, "pnrs-geral", Catalog()[0].ID)
}

func TestForCategory(t *testing.T) {
	rs := []Rule{
		{ID: "universal", Weight: 1},
		{ID: "obras-only", Weight: 1, Tags: []Category{CategoryObras}},
		{ID: "ti-energia", Weight: 1, Tags: []Category{CategoryTI, CategoryEnergia}},
	}

	tests := []struct {
		name     string
		category Category
		want     []string
	}{
		{"obras", CategoryObras, []string{"universal", "obras-only"}},
		{"energia", CategoryEnergia, []string{"universal", "ti-energia"}},
		{"saude", CategorySaude, []string{"universal"}},
		{"no active category", "", []string{"universal", "obras-only", "ti-energia"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForCategory(rs, tt.category)
			var ids []string
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	assert.Len(t, rs, 3, "input must not be mutated")
	assert.Equal(t, "universal", rs[0].ID)
}

func TestCatalogForObras(t *testing.T) {
	var ids []string
	for _, r := range ForCategory(Catalog(), CategoryObras) {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"pnrs-geral", "mtr", "fispq", "conama-307", "conama-430", "iso-14001"}, ids)

	ids = nil
	for _, r := range ForCategory(Catalog(), CategoryTI) {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"pnrs-geral", "iso-14001"}, ids)
}

func TestLookupCategory(t *testing.T) {
	info, ok := LookupCategory("saneamento")
	assert.True(t, ok)
	assert.Equal(t, "Efluentes", info.Label)

	_, ok = LookupCategory("nuclear")
	assert.False(t, ok)
	assert.Len(t, Categories(), 9)
}
