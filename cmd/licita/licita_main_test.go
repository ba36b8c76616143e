// licita/cmd/licita/licita_main_test.go

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edital.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunTextOutput(t *testing.T) {
	path := writeDoc(t, "O contratado deve apresentar PGRS e MTR.")

	var out bytes.Buffer
	require.NoError(t, run([]string{"licita", "-file", path}, &out, false))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "Score: 40/100 YELLOW", lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "✓ Atende parcialmente/totalmente: "))
	assert.True(t, strings.HasPrefix(lines[4], "✗ "))
}

func TestRunJSONWithSuggestion(t *testing.T) {
	path := writeDoc(t, "Produtos com FISPQ.")

	var out bytes.Buffer
	require.NoError(t, run([]string{"licita", "-file", path, "-category", "quimicos", "-format", "json", "-suggest"}, &out, false))

	var got struct {
		Report struct {
			Score    int `json:"score"`
			Findings []struct {
				RuleID string `json:"ruleId"`
			} `json:"findings"`
		} `json:"report"`
		Semaphore  string `json:"semaphore"`
		Suggestion string `json:"suggestion"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	// 8 of 19 weight points.
	assert.Equal(t, 42, got.Report.Score)
	assert.Equal(t, "yellow", got.Semaphore)
	assert.Len(t, got.Report.Findings, 3)
	assert.Contains(t, got.Suggestion, "Itens ausentes ou não identificados:")
}

func TestParseFlagsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no file", []string{"licita"}, "-file is required"},
		{"bad format", []string{"licita", "-file", "x", "-format", "xml"}, "invalid format"},
		{"bad category", []string{"licita", "-file", "x", "-category", "espacial"}, "unknown category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestRunMissingFile(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"licita", "-file", filepath.Join(t.TempDir(), "nada.pdf")}, &out, false)
	assert.Error(t, err)
	assert.Empty(t, out.String())
}
