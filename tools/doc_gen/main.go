// licita/tools/doc_gen/main.go

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"rgehrsitz/licita/pkg/rules"
	"rgehrsitz/licita/tools/internal/fakedoc"
)

const manifestName = "manifest.json"

type genOptions struct {
	count     int
	outputDir string
	category  string
	coverage  float64
	seed      uint64
}

type ManifestEntry struct {
	File string `json:"file"`
	fakedoc.Document
}

func parseFlags(args []string) (genOptions, error) {
	fs := flag.NewFlagSet("doc_gen", flag.ContinueOnError)
	opts := genOptions{}
	fs.IntVar(&opts.count, "count", 100, "Number of documents to generate")
	fs.StringVar(&opts.outputDir, "output", "generated_docs", "Output directory")
	fs.StringVar(&opts.category, "category", "", "Category for every document (random when empty)")
	fs.Float64Var(&opts.coverage, "coverage", 0.5, "Probability that each applicable clause is included")
	fs.Uint64Var(&opts.seed, "seed", 0, "Random seed (0 picks one)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.category != "" {
		if _, ok := rules.LookupCategory(opts.category); !ok {
			return opts, fmt.Errorf("unknown category %q", opts.category)
		}
	}
	if opts.coverage < 0 || opts.coverage > 1 {
		return opts, fmt.Errorf("coverage must be between 0 and 1")
	}
	return opts, nil
}

// generateDocuments writes count text files plus a manifest naming the
// clauses each one contains.
func generateDocuments(opts genOptions, bar *progressbar.ProgressBar) ([]ManifestEntry, error) {
	if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
		return nil, err
	}

	g := fakedoc.New(opts.seed, opts.coverage)
	manifest := make([]ManifestEntry, 0, opts.count)
	for i := 1; i <= opts.count; i++ {
		category := rules.Category(opts.category)
		if category == "" {
			category = g.RandomCategory()
		}
		doc := g.Document(category)

		name := fmt.Sprintf("doc-%04d.txt", i)
		if err := os.WriteFile(filepath.Join(opts.outputDir, name), []byte(doc.Text), 0o644); err != nil {
			return nil, err
		}
		manifest = append(manifest, ManifestEntry{File: name, Document: doc})
		if bar != nil {
			bar.Add(1)
		}
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(opts.outputDir, manifestName), data, 0o644); err != nil {
		return nil, err
	}
	return manifest, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	bar := progressbar.Default(int64(opts.count), "generating")
	if _, err := generateDocuments(opts, bar); err != nil {
		fmt.Printf("Error generating documents: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %d documents in %s\n", opts.count, opts.outputDir)
}
