package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/oxidize/oxidize/internal/codegen/generator"
	"github.com/oxidize/oxidize/internal/codegen/interop"
	"github.com/oxidize/oxidize/internal/codegen/scanner"
	"github.com/oxidize/oxidize/internal/codegen/symbols"
)

type Scan struct {
	Models []string `arg:"" name:"model" help:"Program model files (json, yaml or toml)"`

	Options `embed:""`

	Format string `help:"Output format" enum:"json,yaml" default:"yaml" env:"OXIDIZE_SCAN_FORMAT"`
	Output string `help:"Write to this file instead of stdout" env:"OXIDIZE_SCAN_OUTPUT"`
}

// Report is what scan prints.
type Report struct {
	Types       []scanner.TypeSummary `json:"types" yaml:"types"`
	Diagnostics []scanner.Diagnostic  `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Run is called by Kong when the scan command is executed.
func (s *Scan) Run(logger *slog.Logger) (err error) {
	w := io.Writer(os.Stdout)
	if s.Output != "" {
		f, ferr := os.Create(s.Output)
		if ferr != nil {
			return ferr
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close %s: %w", s.Output, cerr)
			}
		}()
		w = f
	}
	return s.ScanTo(context.Background(), logger, w)
}

// ScanTo runs collection, merging and linking and writes the report to w.
func (s *Scan) ScanTo(ctx context.Context, logger *slog.Logger, w io.Writer) error {
	gen := generator.New(generator.Config{Options: s.metaOptions()}, logger)
	c, err := gen.Load(s.Models...)
	if err != nil {
		return err
	}
	types, diags, err := gen.Scan(ctx, c)
	if err != nil {
		return err
	}

	classifier := interop.NewClassifier(s.NonBlittableTypes)
	report := Report{
		Types: scanner.Summarize(types, func(t *symbols.Type) string {
			return classifier.Classify(t).String()
		}),
		Diagnostics: diags,
	}

	switch s.Format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format: %s", s.Format)
	}
}
