// Package generator drives a whole run: load the program model, collect
// every discovery site, merge and link the results, emit every type and
// assemble the native and managed files.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/oxidize/oxidize/internal/codegen/common"
	"github.com/oxidize/oxidize/internal/codegen/emit"
	"github.com/oxidize/oxidize/internal/codegen/generator/cpp"
	"github.com/oxidize/oxidize/internal/codegen/generator/csharp"
	"github.com/oxidize/oxidize/internal/codegen/interop"
	"github.com/oxidize/oxidize/internal/codegen/meta"
	"github.com/oxidize/oxidize/internal/codegen/scanner"
	"github.com/oxidize/oxidize/internal/codegen/symbols"
)

var (
	// ErrTableMismatch means the native and managed tables disagree in
	// length. Generated code with such a table aborts at startup, so it is
	// never written.
	ErrTableMismatch = errors.New("function pointer tables differ in length")
	// ErrWarnings is returned when warnings are treated as errors.
	ErrWarnings = errors.New("generation produced warnings")
)

// TableNamespace seeds the table identity.
var TableNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/oxidize/oxidize/function-pointer-table"))

// Config is everything a run needs besides the program model.
type Config struct {
	Options meta.Options
	Layout  meta.Layout
	// Languages restricts the assembled sides. Empty means both.
	Languages        []string
	WarningsAsErrors bool
}

// LanguageGenerator renders the files of one side of the bindings.
type LanguageGenerator func(logger *slog.Logger, layout meta.Layout, ctx *meta.Context, results []*meta.GeneratedResult, table meta.Table) ([]common.File, error)

var generators = map[string]LanguageGenerator{
	"cpp":    cpp.Generate,
	"csharp": csharp.Generate,
}

// Languages lists the supported sides.
func Languages() []string {
	out := make([]string, 0, len(generators))
	for k := range generators {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type Generator struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Generator {
	return &Generator{cfg: cfg, logger: logger}
}

// Output is the in-memory result of a run.
type Output struct {
	Context     *meta.Context
	Types       scanner.GenerationMap
	Results     []*meta.GeneratedResult
	Table       meta.Table
	Diagnostics []scanner.Diagnostic
	Files       []common.File
}

// Load reads and resolves program model documents.
func (g *Generator) Load(paths ...string) (*symbols.Compilation, error) {
	if len(paths) == 0 {
		return nil, errors.New("no program model given")
	}
	docs := make([]*symbols.Document, 0, len(paths))
	for _, p := range paths {
		g.logger.Debug("Reading program model", "path", p)
		doc, err := symbols.ReadDocument(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	c, err := symbols.Load(docs...)
	if err != nil {
		return nil, fmt.Errorf("load program model: %w", err)
	}
	g.logger.Info("Loaded program model", "documents", len(docs), "types", len(c.Types()))
	return c, nil
}

// Scan collects every discovery site of c and returns the merged, linked
// generation map.
func (g *Generator) Scan(ctx context.Context, c *symbols.Compilation) (scanner.GenerationMap, []scanner.Diagnostic, error) {
	sites := symbols.DiscoverSites(c)
	g.logger.Info("Discovered sites", "count", len(sites))

	parts, err := scanner.CollectAll(ctx, sites, g.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("collect sites: %w", err)
	}
	merged, diags := scanner.Merge(parts...)
	scanner.Link(merged)
	g.logger.Info("Collected types", "count", len(merged))
	return merged, diags, nil
}

// Generate runs every stage over c and returns the files it would write.
func (g *Generator) Generate(ctx context.Context, c *symbols.Compilation) (*Output, error) {
	types, diags, err := g.Scan(ctx, c)
	if err != nil {
		return nil, err
	}

	mctx := meta.NewContext(c, types, g.cfg.Options, g.logger)
	emit.RegisterBuiltins(mctx)
	results := emit.GenerateAll(mctx)
	for _, r := range results {
		diags = append(diags, r.Diagnostics...)
	}

	table, err := BuildTable(results)
	if err != nil {
		return nil, err
	}
	g.logger.Info("Built function pointer table", "slots", table.Len(), "id", table.ID)

	out := &Output{
		Context:     mctx,
		Types:       types,
		Results:     results,
		Table:       table,
		Diagnostics: diags,
	}
	g.report(diags)
	if g.cfg.WarningsAsErrors && hasWarnings(diags) {
		return out, ErrWarnings
	}

	langs := g.cfg.Languages
	if len(langs) == 0 {
		langs = Languages()
	}
	for _, lang := range langs {
		gen, ok := generators[lang]
		if !ok {
			return nil, fmt.Errorf("unsupported language '%s' (supported: %v)", lang, Languages())
		}
		g.logger.Info("Assembling bindings", "language", lang)
		files, err := gen(g.logger, g.cfg.Layout, mctx, results, table)
		if err != nil {
			return nil, fmt.Errorf("assemble %s bindings: %w", lang, err)
		}
		out.Files = append(out.Files, files...)
	}
	if g.cfg.Layout.HeaderDir != "" && slices.Contains(langs, "cpp") {
		out.Files = append(out.Files, common.Readme(g.cfg.Layout.HeaderDir, table.Len(), table.ID))
	}
	return out, nil
}

// Write writes the files of out, skipping files whose content is
// unchanged.
func (g *Generator) Write(out *Output) error {
	written, err := common.WriteFiles(g.logger, out.Files)
	if err != nil {
		return err
	}
	g.logger.Info("Generation complete", "files", len(out.Files), "written", written)
	return nil
}

// Run loads paths, generates and writes.
func (g *Generator) Run(ctx context.Context, paths ...string) (*Output, error) {
	c, err := g.Load(paths...)
	if err != nil {
		return nil, err
	}
	out, err := g.Generate(ctx, c)
	if err != nil {
		return out, err
	}
	return out, g.Write(out)
}

// BuildTable concatenates the init entries of every result in order and
// derives the table identity from the native signature. Managed trampoline
// names are made unique across the whole table.
func BuildTable(results []*meta.GeneratedResult) (meta.Table, error) {
	var t meta.Table
	names := interop.NewNameRegistry()
	for _, r := range results {
		if len(r.CppInit) != len(r.CSharpInit) {
			return meta.Table{}, fmt.Errorf("%w: %s has %d native and %d managed entries",
				ErrTableMismatch, r.Item.Key(), len(r.CppInit), len(r.CSharpInit))
		}
		t.Cpp = append(t.Cpp, r.CppInit...)
		for _, e := range r.CSharpInit {
			// Trampolines share one managed class, and flattened type keys
			// such as A.B_C and A_B.C spell the same prefix.
			if name := names.Unique(e.Name, r.Item.Key()+"/"+e.Name); name != e.Name {
				e = renameTrampoline(e, name)
			}
			t.CSharp = append(t.CSharp, e)
		}
	}
	var sig strings.Builder
	for _, e := range t.Cpp {
		sig.WriteString(e.FieldName)
		sig.WriteString("|")
		sig.WriteString(e.FunctionPointerType)
		sig.WriteString("\n")
	}
	t.ID = uuid.NewSHA1(TableNamespace, []byte(sig.String())).String()
	return t, nil
}

// renameTrampoline rewrites the delegate type, delegate field and method
// of a trampoline to name.
func renameTrampoline(e meta.CSharpInitEntry, name string) meta.CSharpInitEntry {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(e.Name) + `(Type|Delegate)?\b`)
	e.Content = re.ReplaceAllString(e.Content, name+"${1}")
	e.Name = name
	return e
}

func (g *Generator) report(diags []scanner.Diagnostic) {
	for _, d := range diags {
		switch d.Severity {
		case scanner.SeverityError:
			g.logger.Error("Diagnostic", "code", d.Code, "subject", d.Subject, "message", d.Message)
		case scanner.SeverityWarning:
			g.logger.Warn("Diagnostic", "code", d.Code, "subject", d.Subject, "message", d.Message)
		default:
			g.logger.Debug("Diagnostic", "code", d.Code, "subject", d.Subject, "message", d.Message)
		}
	}
}

func hasWarnings(diags []scanner.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity != scanner.SeverityInfo {
			return true
		}
	}
	return false
}
