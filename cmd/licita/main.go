// licita/cmd/licita/main.go

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"

	"rgehrsitz/licita/pkg/analyzer"
	"rgehrsitz/licita/pkg/clauses"
	"rgehrsitz/licita/pkg/document"
	"rgehrsitz/licita/pkg/logging"
	"rgehrsitz/licita/pkg/rulepack"
	"rgehrsitz/licita/pkg/rules"
)

type options struct {
	file      string
	category  string
	format    string
	suggest   bool
	rulesFile string
	logLevel  string
}

func main() {
	color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if err := run(os.Args, os.Stdout, color); err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	opts := &options{}
	fs.StringVar(&opts.file, "file", "", "PDF, DOCX or text file to analyse")
	fs.StringVar(&opts.category, "category", "", "Procurement category used to select rules")
	fs.StringVar(&opts.format, "format", "text", "Output format: text or json")
	fs.BoolVar(&opts.suggest, "suggest", false, "Append suggested clauses for the gaps")
	fs.StringVar(&opts.rulesFile, "rules", "", "Rule pack (JSON or YAML) replacing the built-in catalog")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Log level")
	if err := fs.Parse(args[1:]); err != nil {
		return nil, err
	}

	if opts.file == "" {
		return nil, fmt.Errorf("-file is required")
	}
	if opts.format != "text" && opts.format != "json" {
		return nil, fmt.Errorf("invalid format %q", opts.format)
	}
	if opts.category != "" {
		if _, ok := rules.LookupCategory(opts.category); !ok {
			return nil, fmt.Errorf("unknown category %q", opts.category)
		}
	}
	return opts, nil
}

func run(args []string, out io.Writer, color bool) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	if err := logging.ConfigureLogger(opts.logLevel, "console"); err != nil {
		return err
	}

	rs := rules.Catalog()
	if opts.rulesFile != "" {
		if rs, err = rulepack.Load(opts.rulesFile); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(opts.file)
	if err != nil {
		return err
	}
	text, err := document.ExtractText(opts.file, data)
	if err != nil {
		return err
	}

	report := analyzer.Analyze(text, rules.ForCategory(rs, rules.Category(opts.category)))
	var suggestion string
	if opts.suggest {
		suggestion = clauses.Compose(report)
	}

	if opts.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Report     analyzer.Report    `json:"report"`
			Semaphore  analyzer.Semaphore `json:"semaphore"`
			Suggestion string             `json:"suggestion,omitempty"`
		}{report, report.Semaphore(), suggestion})
	}

	printReport(out, report, newStyles(color))
	if suggestion != "" {
		fmt.Fprintf(out, "\n%s", suggestion)
	}
	return nil
}

type styles struct {
	semaphore map[analyzer.Semaphore]lipgloss.Style
	matched   lipgloss.Style
	missing   lipgloss.Style
}

func newStyles(color bool) styles {
	st := styles{semaphore: map[analyzer.Semaphore]lipgloss.Style{}}
	if !color {
		plain := lipgloss.NewStyle()
		for _, s := range []analyzer.Semaphore{analyzer.SemaphoreGreen, analyzer.SemaphoreYellow, analyzer.SemaphoreRed} {
			st.semaphore[s] = plain
		}
		st.matched, st.missing = plain, plain
		return st
	}
	st.semaphore[analyzer.SemaphoreGreen] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	st.semaphore[analyzer.SemaphoreYellow] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	st.semaphore[analyzer.SemaphoreRed] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	st.matched = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	st.missing = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	return st
}

func printReport(out io.Writer, report analyzer.Report, st styles) {
	sem := report.Semaphore()
	fmt.Fprintf(out, "Score: %d/100 %s\n\n", report.Score, st.semaphore[sem].Render(strings.ToUpper(string(sem))))
	for _, f := range report.Findings {
		mark, style := "✗", st.missing
		if f.Matched {
			mark, style = "✓", st.matched
		}
		fmt.Fprintf(out, "%s %s\n", style.Render(mark), f.Comment)
	}
}
