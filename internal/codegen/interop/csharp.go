package interop

import (
	"strings"

	"github.com/oxidize/oxidize/internal/codegen/symbols"
)

var csharpKeywords = map[symbols.SpecialType]string{
	symbols.SpecialVoid:    "void",
	symbols.SpecialBoolean: "bool",
	symbols.SpecialChar:    "char",
	symbols.SpecialSByte:   "sbyte",
	symbols.SpecialByte:    "byte",
	symbols.SpecialInt16:   "short",
	symbols.SpecialUInt16:  "ushort",
	symbols.SpecialInt32:   "int",
	symbols.SpecialUInt32:  "uint",
	symbols.SpecialInt64:   "long",
	symbols.SpecialUInt64:  "ulong",
	symbols.SpecialSingle:  "float",
	symbols.SpecialDouble:  "double",
	symbols.SpecialIntPtr:  "System.IntPtr",
	symbols.SpecialUIntPtr: "System.UIntPtr",
	symbols.SpecialObject:  "object",
	symbols.SpecialString:  "string",
}

// CSharpName spells t in C# source. Types in the global namespace stay
// unqualified.
func CSharpName(t *symbols.Type) string {
	if t == nil {
		return "void"
	}
	if kw, ok := csharpKeywords[t.Special]; ok {
		return kw
	}
	if t.Shape == symbols.ShapeTypeParameter {
		return t.Name
	}
	def := t
	if t.Definition != nil {
		def = t.Definition
	}
	name := def.FullName()
	if len(t.TypeArguments) == 0 {
		return name
	}
	args := make([]string, len(t.TypeArguments))
	for i, a := range t.TypeArguments {
		args[i] = CSharpName(a)
	}
	return name + "<" + strings.Join(args, ", ") + ">"
}

// CSharpInteropType is the C# spelling of t's interop representation, as
// used in delegate signatures.
func (c *Context) CSharpInteropType(t *symbols.Type) string {
	if t == nil {
		return "void"
	}
	switch c.Classify(t) {
	case KindPrimitive:
		switch t.Special {
		case symbols.SpecialBoolean:
			return "byte"
		case symbols.SpecialChar:
			return "ushort"
		}
		return CSharpName(t)
	case KindBlittableStruct:
		return CSharpName(t)
	case KindEnum:
		return CSharpName(t.EnumUnderlying)
	}
	return "System.IntPtr"
}

// CSharpConversionToInterop converts a managed expression of type t to
// its interop representation. Wrappers get a fresh handle that the
// native side owns.
func (c *Context) CSharpConversionToInterop(t *symbols.Type, expr string) string {
	switch c.Classify(t) {
	case KindPrimitive:
		switch t.Special {
		case symbols.SpecialBoolean:
			return "(byte)(" + expr + " ? 1 : 0)"
		case symbols.SpecialChar:
			return "(ushort)" + expr
		}
		return expr
	case KindBlittableStruct:
		return expr
	case KindEnum:
		return "(" + c.CSharpInteropType(t) + ")" + expr
	}
	return "ObjectHandleUtility.CreateHandle(" + expr + ")"
}

// CSharpConversionFromInterop converts an interop expression back to t.
// Wrapper handles are borrowed from the native caller.
func (c *Context) CSharpConversionFromInterop(t *symbols.Type, expr string) string {
	switch c.Classify(t) {
	case KindPrimitive:
		switch t.Special {
		case symbols.SpecialBoolean:
			return expr + " != 0"
		case symbols.SpecialChar:
			return "(char)" + expr
		}
		return expr
	case KindBlittableStruct:
		return expr
	case KindEnum:
		return "(" + CSharpName(t) + ")" + expr
	}
	return "(" + CSharpName(t) + ")ObjectHandleUtility.GetObjectFromHandle(" + expr + ")"
}

// CSharpConversionFromInteropTakingOwnership is CSharpConversionFromInterop
// for a handle the native side released to managed code.
func (c *Context) CSharpConversionFromInteropTakingOwnership(t *symbols.Type, expr string) string {
	if c.Classify(t).IsWrapper() {
		return "(" + CSharpName(t) + ")ObjectHandleUtility.GetObjectFromHandleAndFree(" + expr + ")"
	}
	return c.CSharpConversionFromInterop(t, expr)
}
