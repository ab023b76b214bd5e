// Package cpp assembles the native half of the bindings: one header and
// source per generated type, the initializer that receives the function
// pointer table, and the handle runtime.
package cpp

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/oxidize/oxidize/internal/codegen/common"
	"github.com/oxidize/oxidize/internal/codegen/interop"
	"github.com/oxidize/oxidize/internal/codegen/meta"
	"github.com/oxidize/oxidize/internal/codegen/symbols"
)

// InitializeHeader is the header declaring initializeOxidize, relative to
// the header root.
const InitializeHeader = "initializeOxidize.h"

func writeFileHeader() string {
	return common.FileHeader("//", "C++")
}

// Generate renders every native file. Nothing is written; the caller
// decides what reaches the disk.
func Generate(logger *slog.Logger, layout meta.Layout, ctx *meta.Context, results []*meta.GeneratedResult, table meta.Table) ([]common.File, error) {
	var files []common.File
	add := func(dir, rel string, content []byte) {
		files = append(files, common.File{Path: filepath.Join(dir, filepath.FromSlash(rel)), Content: content})
	}

	for _, u := range groupUnits(results) {
		logger.Debug("Assembling native type", "header", u.header)
		h, err := u.renderHeader()
		if err != nil {
			return nil, err
		}
		add(layout.HeaderDir, u.header, h)

		src, err := u.renderSource()
		if err != nil {
			return nil, err
		}
		if src != nil {
			add(layout.SourceDir, u.source, src)
		}
	}

	for _, r := range results {
		if r.CppImplementationInvoker == nil {
			continue
		}
		content, err := renderBindings(r.CppImplementationInvoker)
		if err != nil {
			return nil, err
		}
		add(layout.SourceDir, strings.TrimSuffix(r.CppType.SourcePath(), ".cpp")+"Bindings.cpp", content)
	}

	rt, err := runtimeFiles(ctx, table)
	if err != nil {
		return nil, err
	}
	for _, f := range rt {
		dir := layout.SourceDir
		if strings.HasSuffix(f.Path, ".h") {
			dir = layout.HeaderDir
		}
		add(dir, f.Path, f.Content)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	logger.Info("Assembled native bindings", "files", len(files), "slots", table.Len())
	return files, nil
}

// unit is one header/source pair. Specializations of a generic type share
// the unit of their definition.
type unit struct {
	header  string
	source  string
	ns      string
	results []*meta.GeneratedResult
}

func groupUnits(results []*meta.GeneratedResult) []*unit {
	byHeader := map[string]*unit{}
	var order []string
	for _, r := range results {
		switch r.CppType.Kind {
		case interop.KindPrimitive, interop.KindGenericParameter:
			continue
		}
		h := r.CppType.HeaderPath()
		u, ok := byHeader[h]
		if !ok {
			u = &unit{
				header: h,
				source: r.CppType.SourcePath(),
				ns:     strings.Join(r.CppType.Namespaces, "::"),
			}
			byHeader[h] = u
			order = append(order, h)
		}
		u.results = append(u.results, r)
	}
	sort.Strings(order)
	out := make([]*unit, len(order))
	for i, h := range order {
		out[i] = byHeader[h]
	}
	return out
}

func (u *unit) generic() bool {
	return len(u.results[0].CppType.GenericArguments) > 0
}

const headerTemplate = `{{.Header}}
#pragma once
{{range .Includes}}
#include {{.}}
{{- end}}
{{- range .Forward}}

{{.}}
{{- end}}
{{if .Namespace}}
namespace {{.Namespace}} {
{{end}}
{{- if .Primary}}
{{.Primary}}
{{end}}
{{- range .Blocks}}
{{.}}
{{- end}}
{{- if .Namespace}}
} // namespace {{.Namespace}}
{{- end}}
`

const sourceTemplate = `{{.Header}}
{{- range .Includes}}
#include {{.}}
{{- end}}
{{if .Namespace}}
namespace {{.Namespace}} {
{{end}}
{{- range .Definitions}}
{{.}}
{{end}}
{{- if .Namespace}}
} // namespace {{.Namespace}}
{{- end}}
`

func (u *unit) renderHeader() ([]byte, error) {
	inc := newIncludeSet(u.header)
	inc.add("<cstdint>")
	var blocks []string
	for _, r := range u.results {
		for _, e := range r.Declaration.Elements {
			inc.addRefs(e.TypeRefs, true)
		}
		if r.Declaration.HasBody {
			blocks = append(blocks, renderClass(r))
		}
		for _, e := range r.Declaration.NamespaceScope() {
			blocks = append(blocks, "\n"+e.Content)
		}
	}
	primary := ""
	if u.generic() {
		ct := u.results[0].CppType
		primary = "template <" + typenames(ct.TemplateParameters) + ">\n" + ct.Keyword() + " " + ct.Name + ";"
	}
	return render("header", headerTemplate, map[string]any{
		"Header":    writeFileHeader(),
		"Includes":  inc.includes(),
		"Forward":   inc.forwards(),
		"Namespace": u.ns,
		"Primary":   primary,
		"Blocks":    blocks,
	})
}

// renderSource returns nil when the unit has nothing to define, which is
// the case for enums.
func (u *unit) renderSource() ([]byte, error) {
	inc := newIncludeSet(u.header)
	var defs []string
	for _, r := range u.results {
		for _, e := range r.Declaration.Elements {
			inc.addRefs(e.TypeRefs, false)
		}
		for _, e := range r.Definition.Elements {
			inc.addRefs(e.TypeRefs, false)
			defs = append(defs, e.Content)
		}
	}
	if len(defs) == 0 {
		return nil, nil
	}
	includes := append([]string{quote(u.header)}, inc.includes()...)
	return render("source", sourceTemplate, map[string]any{
		"Header":      writeFileHeader(),
		"Includes":    includes,
		"Namespace":   u.ns,
		"Definitions": defs,
	})
}

// renderClass renders the class body of one result, switching access
// labels as needed.
func renderClass(r *meta.GeneratedResult) string {
	ct := r.CppType
	var b strings.Builder
	b.WriteString("\n")
	if len(ct.GenericArguments) > 0 {
		b.WriteString("template <>\n")
	}
	b.WriteString(r.Declaration.Keyword + " " + ct.LocalName() + " {\n")
	access := ""
	for _, e := range r.Declaration.Body() {
		want := "public"
		if e.IsPrivate {
			want = "private"
		}
		if want != access {
			b.WriteString(want + ":\n")
			access = want
		}
		b.WriteString(indent(e.Content, "    "))
		b.WriteString("\n")
	}
	b.WriteString("};")
	return b.String()
}

func renderBindings(inv *meta.CppImplementationInvoker) ([]byte, error) {
	const bindingsTemplate = `{{.Header}}
{{- range .Includes}}
#include {{.}}
{{- end}}

extern "C" {
{{range .Functions}}
{{.}}
{{end}}
} // extern "C"
`
	includes := append([]string{}, inv.Includes...)
	sort.Strings(includes)
	return render("bindings", bindingsTemplate, map[string]any{
		"Header":    writeFileHeader(),
		"Includes":  includes,
		"Functions": inv.Functions,
	})
}

func render(name, text string, data any) ([]byte, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute %s template: %w", name, err)
	}
	return buf.Bytes(), nil
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

func quote(path string) string { return `"` + path + `"` }

func typenames(params []string) string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = "typename " + p
	}
	return strings.Join(out, ", ")
}

// runtimeDir is the header path of the native runtime support types.
func runtimeDir(ctx *meta.Context) string {
	return strings.Join(ctx.Interop.Namespaces(symbols.RuntimeNamespace), "/")
}
