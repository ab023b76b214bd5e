package interop

import (
	"strings"

	"github.com/oxidize/oxidize/internal/codegen/symbols"
)

// Context maps managed types to native types under a base namespace.
type Context struct {
	BaseNamespace []string
	Classifier    *Classifier
}

// NewContext returns a context rooting every generated type under
// baseNamespace ("DotNet", "Acme::Bindings" or "Acme.Bindings").
func NewContext(baseNamespace string, nonBlittable []string) *Context {
	return &Context{
		BaseNamespace: SplitNamespace(baseNamespace),
		Classifier:    NewClassifier(nonBlittable),
	}
}

// SplitNamespace splits a dotted or C++-scoped namespace into its parts.
func SplitNamespace(ns string) []string {
	ns = strings.ReplaceAll(ns, "::", ".")
	var out []string
	for _, p := range strings.Split(ns, ".") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Classify returns the kind of t.
func (c *Context) Classify(t *symbols.Type) Kind {
	return c.Classifier.Classify(t)
}

// Namespaces maps a managed namespace to its native namespace path.
func (c *Context) Namespaces(managed string) []string {
	return append(append([]string{}, c.BaseNamespace...), SplitNamespace(managed)...)
}

// HandleType is the native handle class every wrapper holds.
func (c *Context) HandleType() CppType {
	return CppType{
		Kind:       KindClassWrapper,
		Namespaces: c.Namespaces(symbols.RuntimeNamespace),
		Name:       "ObjectHandle",
	}
}

// CppType returns the native type for a managed type. A nil type is void.
func (c *Context) CppType(t *symbols.Type) CppType {
	if t == nil {
		return Void
	}
	kind := c.Classify(t)
	switch kind {
	case KindPrimitive:
		return primitive(t.Special)
	case KindGenericParameter:
		return CppType{Kind: kind, Name: t.Name}
	}

	def := t
	if t.Definition != nil {
		def = t.Definition
	}
	ct := CppType{
		Kind:       kind,
		Namespaces: c.Namespaces(def.Namespace),
		Name:       def.Name,
		handle:     c.HandleType().QualifiedName(),
	}
	for _, tp := range def.TypeParameters {
		ct.TemplateParameters = append(ct.TemplateParameters, tp.Name)
	}
	for _, a := range t.TypeArguments {
		ct.GenericArguments = append(ct.GenericArguments, c.CppType(a))
	}
	if kind == KindEnum {
		ct.Underlying = c.CppType(t.EnumUnderlying).Name
		if t.EnumUnderlying == nil {
			ct.Underlying = Int32.Name
		}
	}
	return ct
}

func primitive(s symbols.SpecialType) CppType {
	switch s {
	case symbols.SpecialBoolean:
		return Bool
	case symbols.SpecialChar:
		return Char16
	case symbols.SpecialSByte:
		return Int8
	case symbols.SpecialByte:
		return UInt8
	case symbols.SpecialInt16:
		return Int16
	case symbols.SpecialUInt16:
		return UInt16
	case symbols.SpecialInt32:
		return Int32
	case symbols.SpecialUInt32:
		return UInt32
	case symbols.SpecialInt64:
		return Int64
	case symbols.SpecialUInt64:
		return UInt64
	case symbols.SpecialSingle:
		return Float
	case symbols.SpecialDouble:
		return Double
	case symbols.SpecialIntPtr, symbols.SpecialUIntPtr:
		return Pointer
	}
	return Void
}
