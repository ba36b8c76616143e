// licita/tools/doc_gen/doc_gen_main_test.go

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rgehrsitz/licita/pkg/analyzer"
	"rgehrsitz/licita/pkg/rules"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{})
	require.NoError(t, err)
	assert.Equal(t, 100, opts.count)
	assert.Equal(t, "generated_docs", opts.outputDir)
	assert.Equal(t, 0.5, opts.coverage)

	opts, err = parseFlags([]string{"-count", "5", "-output", "out", "-category", "obras", "-coverage", "1", "-seed", "9"})
	require.NoError(t, err)
	assert.Equal(t, 5, opts.count)
	assert.Equal(t, "out", opts.outputDir)
	assert.Equal(t, "obras", opts.category)
	assert.EqualValues(t, 9, opts.seed)

	_, err = parseFlags([]string{"-category", "espacial"})
	assert.Error(t, err)
	_, err = parseFlags([]string{"-coverage", "1.5"})
	assert.Error(t, err)
}

func TestGenerateDocuments(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	manifest, err := generateDocuments(genOptions{count: 3, outputDir: dir, category: "obras", coverage: 1, seed: 3}, nil)
	require.NoError(t, err)
	require.Len(t, manifest, 3)

	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	require.NoError(t, err)
	var onDisk []ManifestEntry
	require.NoError(t, json.Unmarshal(data, &onDisk))
	require.Len(t, onDisk, 3)
	assert.Equal(t, "doc-0001.txt", onDisk[0].File)
	assert.Equal(t, rules.CategoryObras, onDisk[0].Category)

	text, err := os.ReadFile(filepath.Join(dir, "doc-0002.txt"))
	require.NoError(t, err)
	report := analyzer.Analyze(string(text), rules.ForCategory(rules.Catalog(), rules.CategoryObras))
	assert.Equal(t, 100, report.Score)
	assert.Len(t, onDisk[1].Included, 6)
}
