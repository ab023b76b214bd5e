// Package meta holds the emission IR shared between the per-member
// emitters and the language-specific assemblers: one GeneratedResult per
// generated type, plus the Context every emitter reads.
package meta

import (
	"log/slog"

	"github.com/oxidize/oxidize/internal/codegen/interop"
	"github.com/oxidize/oxidize/internal/codegen/scanner"
	"github.com/oxidize/oxidize/internal/codegen/symbols"
)

// Options are the build-time values that shape the generated code.
type Options struct {
	BaseNamespace     string   `json:"baseNamespace" yaml:"baseNamespace"`         // Native namespace every type lives under
	NativeLibraryName string   `json:"nativeLibraryName" yaml:"nativeLibraryName"` // Library the managed side imports from
	NonBlittableTypes []string `json:"nonBlittableTypes" yaml:"nonBlittableTypes"` // Structs forced to be wrapped
}

// DefaultOptions are used for every option left empty.
var DefaultOptions = Options{
	BaseNamespace:     "DotNet",
	NativeLibraryName: "OxidizeNative",
}

// CustomGenerator post-processes the result of one managed type.
type CustomGenerator interface {
	// ManagedTypeName is the key of the type the generator applies to.
	ManagedTypeName() string
	Generate(ctx *Context, item *scanner.TypeToGenerate, result *GeneratedResult)
}

// Context carries everything emission reads. It is not modified once
// emission starts, so results for different types can be built in any
// order.
type Context struct {
	Options     Options
	Interop     *interop.Context
	Compilation *symbols.Compilation
	Types       scanner.GenerationMap
	Logger      *slog.Logger

	custom map[string]CustomGenerator
}

// NewContext returns a context over a linked generation map.
func NewContext(c *symbols.Compilation, types scanner.GenerationMap, opts Options, logger *slog.Logger) *Context {
	if opts.BaseNamespace == "" {
		opts.BaseNamespace = DefaultOptions.BaseNamespace
	}
	if opts.NativeLibraryName == "" {
		opts.NativeLibraryName = DefaultOptions.NativeLibraryName
	}
	return &Context{
		Options:     opts,
		Interop:     interop.NewContext(opts.BaseNamespace, opts.NonBlittableTypes),
		Compilation: c,
		Types:       types,
		Logger:      logger,
		custom:      map[string]CustomGenerator{},
	}
}

// Register adds a custom generator, replacing any earlier one for the
// same type.
func (c *Context) Register(g CustomGenerator) {
	c.custom[g.ManagedTypeName()] = g
}

// CustomGenerator returns the custom generator registered for t, or nil.
func (c *Context) CustomGenerator(t *symbols.Type) CustomGenerator {
	return c.custom[t.Key()]
}

// CppType maps a managed type to its native type.
func (c *Context) CppType(t *symbols.Type) interop.CppType {
	return c.Interop.CppType(t)
}

// Kind classifies a managed type.
func (c *Context) Kind(t *symbols.Type) interop.Kind {
	return c.Interop.Classify(t)
}

// GeneratedResult is everything emitted for one type.
type GeneratedResult struct {
	Item    *scanner.TypeToGenerate
	CppType interop.CppType

	Declaration CppDeclaration
	Definition  CppDefinition
	CppInit     []CppInitEntry
	CSharpInit  []CSharpInitEntry

	// Only set for native-implemented types.
	CppImplementationInvoker       *CppImplementationInvoker
	CSharpPartialMethodDefinitions *CSharpPartialMethodDefinitions

	Diagnostics []scanner.Diagnostic
}

// NewGeneratedResult returns an empty result for item.
func NewGeneratedResult(item *scanner.TypeToGenerate, ct interop.CppType, keyword string) *GeneratedResult {
	return &GeneratedResult{
		Item:        item,
		CppType:     ct,
		Declaration: CppDeclaration{Type: ct, Keyword: keyword, HasBody: keyword != ""},
		Definition:  CppDefinition{Type: ct},
	}
}

// Diagnose records a diagnostic against the result's type.
func (r *GeneratedResult) Diagnose(severity scanner.Severity, code, message string) {
	r.Diagnostics = append(r.Diagnostics, scanner.Diagnostic{
		Severity: severity,
		Code:     code,
		Message:  message,
		Subject:  r.Item.Key(),
	})
}

// TypeRefs lists the native types a fragment mentions. Declarations only
// need a forward declaration; Definitions need the complete type.
type TypeRefs struct {
	Declarations []interop.CppType
	Definitions  []interop.CppType
	// Includes are extra headers such as <cstddef> or an implementation
	// header.
	Includes []string
}

// CppDeclaration is the header fragment of a type.
type CppDeclaration struct {
	Type interop.CppType
	// Keyword is "class" or "struct"; empty for enums, which have no
	// class body.
	Keyword  string
	HasBody  bool
	Elements []CppDeclarationElement
}

// CppDeclarationElement is one member declaration.
type CppDeclarationElement struct {
	Content   string
	IsPrivate bool
	// IsNamespaceScope elements are rendered after the class body, such
	// as explicit specializations of member templates.
	IsNamespaceScope bool
	// IsLayout elements are data members; their relative order is the
	// memory layout.
	IsLayout bool
	TypeRefs
}

// Add appends an element.
func (d *CppDeclaration) Add(e CppDeclarationElement) { d.Elements = append(d.Elements, e) }

// Body returns the elements inside the class body in render order:
// layout elements in declaration order, then public members, then private
// ones.
func (d *CppDeclaration) Body() []CppDeclarationElement {
	layout := d.filter(func(e CppDeclarationElement) bool { return e.IsLayout && !e.IsNamespaceScope })
	public := d.filter(func(e CppDeclarationElement) bool { return !e.IsLayout && !e.IsPrivate && !e.IsNamespaceScope })
	private := d.filter(func(e CppDeclarationElement) bool { return !e.IsLayout && e.IsPrivate && !e.IsNamespaceScope })
	return append(append(layout, public...), private...)
}

// NamespaceScope returns the elements rendered outside the class body.
func (d *CppDeclaration) NamespaceScope() []CppDeclarationElement {
	return d.filter(func(e CppDeclarationElement) bool { return e.IsNamespaceScope })
}

func (d *CppDeclaration) filter(keep func(CppDeclarationElement) bool) []CppDeclarationElement {
	var out []CppDeclarationElement
	for _, e := range d.Elements {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// CppDefinition is the source fragment of a type.
type CppDefinition struct {
	Type     interop.CppType
	Elements []CppDefinitionElement
}

// CppDefinitionElement is one member definition, rendered inside the
// type's namespace.
type CppDefinitionElement struct {
	Content string
	TypeRefs
}

// Add appends an element.
func (d *CppDefinition) Add(e CppDefinitionElement) { d.Elements = append(d.Elements, e) }

// CppInitEntry is one slot of the native function pointer table.
type CppInitEntry struct {
	// FieldName is the fully qualified static field, for example
	// ::DotNet::Foo::Property_get_Bar.
	FieldName           string
	FunctionPointerType string
	// Header declares the field.
	Header string
}

// CSharpInitEntry is the managed delegate that fills the matching slot.
type CSharpInitEntry struct {
	// Name is the trampoline; the delegate field is Name + "Delegate".
	Name string
	// Content declares the delegate type, the delegate field and the
	// trampoline.
	Content string
}

// CppImplementationInvoker holds the extern "C" forwarding functions of a
// native-implemented type.
type CppImplementationInvoker struct {
	Includes  []string
	Functions []string
}

// CSharpPartialMethodDefinitions holds the managed partial class members
// of a native-implemented type.
type CSharpPartialMethodDefinitions struct {
	Namespace string
	TypeName  string
	Members   []string
}

// Table is the function pointer table of a whole run: the native slots
// and the managed delegates that fill them, index for index.
type Table struct {
	// ID identifies the table's shape. Both sides print it so a mismatched
	// pair of artifacts can be spotted by eye.
	ID     string
	Cpp    []CppInitEntry
	CSharp []CSharpInitEntry
}

// Len is the number of slots.
func (t Table) Len() int { return len(t.Cpp) }

// Layout locates the generated output.
type Layout struct {
	HeaderDir  string `json:"headerDir" yaml:"headerDir"`   // Root of the generated C++ headers
	SourceDir  string `json:"sourceDir" yaml:"sourceDir"`   // Root of the generated C++ sources
	ManagedDir string `json:"managedDir" yaml:"managedDir"` // Directory of the generated C# files
}
