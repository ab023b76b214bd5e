package interop

import (
	"strings"
)

// Flags modify how a CppType is used at a particular site.
type Flags uint8

const (
	FlagPointer Flags = 1 << iota
	FlagReference
	FlagConst
)

// CppType describes a native type at a use site. It is a value object;
// every method returns a new value.
type CppType struct {
	Kind             Kind
	Namespaces       []string
	Name             string
	GenericArguments []CppType
	Flags            Flags

	// Header, when set, is the include that provides the type. Such types
	// are never forward declared.
	Header string
	// Underlying is the integer type behind an enum.
	Underlying string
	// TemplateParameters names the parameters of the primary template for
	// constructed generic types.
	TemplateParameters []string

	// handle is the qualified name of the handle class wrappers are built
	// from.
	handle string
}

// Primitive native types.
var (
	Void    = CppType{Kind: KindPrimitive, Name: "void"}
	Bool    = CppType{Kind: KindPrimitive, Name: "bool"}
	Char16  = CppType{Kind: KindPrimitive, Name: "char16_t"}
	Int8    = CppType{Kind: KindPrimitive, Name: "int8_t", Header: "<cstdint>"}
	UInt8   = CppType{Kind: KindPrimitive, Name: "uint8_t", Header: "<cstdint>"}
	Int16   = CppType{Kind: KindPrimitive, Name: "int16_t", Header: "<cstdint>"}
	UInt16  = CppType{Kind: KindPrimitive, Name: "uint16_t", Header: "<cstdint>"}
	Int32   = CppType{Kind: KindPrimitive, Name: "int32_t", Header: "<cstdint>"}
	UInt32  = CppType{Kind: KindPrimitive, Name: "uint32_t", Header: "<cstdint>"}
	Int64   = CppType{Kind: KindPrimitive, Name: "int64_t", Header: "<cstdint>"}
	UInt64  = CppType{Kind: KindPrimitive, Name: "uint64_t", Header: "<cstdint>"}
	Float   = CppType{Kind: KindPrimitive, Name: "float"}
	Double  = CppType{Kind: KindPrimitive, Name: "double"}
	Pointer = CppType{Kind: KindPrimitive, Name: "void", Flags: FlagPointer}
	// Handle is the single interop representation of every wrapper.
	Handle = Pointer
	// StdString is the standard library string used by convenience members.
	StdString = CppType{Kind: KindNonBlittableStructWrapper, Namespaces: []string{"std"}, Name: "string", Header: "<string>"}
)

// IsPrimitive reports whether the type is a native primitive.
func (t CppType) IsPrimitive() bool { return t.Kind == KindPrimitive }

// IsVoid reports whether the type is plain void (not void*).
func (t CppType) IsVoid() bool {
	return t.Kind == KindPrimitive && t.Name == "void" && t.Flags&FlagPointer == 0
}

// IsExternal reports whether the type comes from a system header.
func (t CppType) IsExternal() bool { return t.Header != "" }

func (t CppType) with(f Flags) CppType {
	t.Flags |= f
	return t
}

// Plain strips the use-site modifiers, keeping a pointer on void*.
func (t CppType) Plain() CppType {
	if t.Kind == KindPrimitive && t.Name == "void" {
		return t
	}
	t.Flags = 0
	return t
}

// AsPointer returns t used through a pointer.
func (t CppType) AsPointer() CppType { return t.with(FlagPointer) }

// AsReference returns t used through a reference.
func (t CppType) AsReference() CppType { return t.with(FlagReference) }

// AsConst returns t const-qualified.
func (t CppType) AsConst() CppType { return t.with(FlagConst) }

// AsParameterType is how a value of t is passed to a native method:
// primitives and enums by value, everything else by const reference.
func (t CppType) AsParameterType() CppType {
	switch t.Kind {
	case KindPrimitive, KindEnum, KindGenericParameter:
		return t
	}
	if t.Flags&(FlagPointer|FlagReference) != 0 {
		return t
	}
	return t.AsConst().AsReference()
}

// AsReturnType is how a value of t is returned. Always by value.
func (t CppType) AsReturnType() CppType { return t }

// AsInteropType maps t to the type used in function pointer signatures.
// Primitives and blittable structs pass through, bool becomes uint8_t,
// enums become their underlying integer and everything else becomes the
// opaque handle.
func (t CppType) AsInteropType() CppType {
	switch t.Kind {
	case KindPrimitive:
		if t.Name == "bool" {
			return UInt8
		}
		return t.Plain()
	case KindBlittableStruct:
		return t.Plain()
	case KindEnum:
		for _, p := range []CppType{Int8, UInt8, Int16, UInt16, Int32, UInt32, Int64, UInt64} {
			if p.Name == t.Underlying {
				return p
			}
		}
		return Int32
	}
	return Handle
}

// Equal compares two types structurally.
func (t CppType) Equal(o CppType) bool {
	return t.Declaration() == o.Declaration() && t.Kind == o.Kind
}

// QualifiedName is the fully qualified name with generic arguments and
// without use-site modifiers.
func (t CppType) QualifiedName() string {
	var b strings.Builder
	if len(t.Namespaces) > 0 {
		b.WriteString("::")
		b.WriteString(strings.Join(t.Namespaces, "::"))
		b.WriteString("::")
	}
	b.WriteString(t.Name)
	if len(t.GenericArguments) > 0 {
		b.WriteString("<")
		for i, a := range t.GenericArguments {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.Declaration())
		}
		b.WriteString(">")
	}
	return b.String()
}

// LocalName is the unqualified name with generic arguments, as used to
// qualify out-of-class member definitions inside t's namespace.
func (t CppType) LocalName() string {
	if len(t.GenericArguments) == 0 {
		return t.Name
	}
	args := make([]string, len(t.GenericArguments))
	for i, a := range t.GenericArguments {
		args[i] = a.Declaration()
	}
	return t.Name + "<" + strings.Join(args, ", ") + ">"
}

// Declaration renders t as it appears in a declaration, for example
// `const ::DotNet::System::String&`.
func (t CppType) Declaration() string {
	var b strings.Builder
	if t.Flags&FlagConst != 0 {
		b.WriteString("const ")
	}
	b.WriteString(t.QualifiedName())
	if t.Flags&FlagPointer != 0 {
		b.WriteString("*")
	}
	if t.Flags&FlagReference != 0 {
		b.WriteString("&")
	}
	return b.String()
}

func (t CppType) String() string { return t.Declaration() }

// FunctionPointer declares a function pointer variable named name.
func FunctionPointer(name string, ret CppType, params []CppType) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Declaration()
	}
	return ret.Declaration() + " (*" + name + ")(" + strings.Join(parts, ", ") + ")"
}

// FunctionPointerType renders the type of a function pointer.
func FunctionPointerType(ret CppType, params []CppType) string {
	return FunctionPointer("", ret, params)
}

// NeedsInclude reports whether t is provided by some header at all.
func (t CppType) NeedsInclude() bool {
	return t.Kind != KindGenericParameter && t.IncludePath() != ""
}

// IncludePath is the header providing t: a system header such as
// `<cstdint>`, a generated header path, or "" for built-in types.
func (t CppType) IncludePath() string {
	if t.Header != "" {
		return t.Header
	}
	if t.Kind == KindPrimitive || t.Kind == KindGenericParameter {
		return ""
	}
	return t.HeaderPath()
}

// HeaderPath is the generated header for t relative to the header root.
func (t CppType) HeaderPath() string {
	parts := append(append([]string{}, t.Namespaces...), t.Name+".h")
	return strings.Join(parts, "/")
}

// SourcePath is the generated source file for t.
func (t CppType) SourcePath() string {
	return strings.TrimSuffix(t.HeaderPath(), ".h") + ".cpp"
}

// ForwardDeclaration renders a namespace-wrapped forward declaration, or
// "" when t cannot be forward declared. Headers forward declare every
// generated type they only name in declarations, by value as well as by
// reference: a function declaration may return or take an incomplete
// type, and the complete type is only needed where it is called.
func (t CppType) ForwardDeclaration() string {
	if t.Kind == KindPrimitive || t.Kind == KindGenericParameter || t.IsExternal() {
		return ""
	}
	var decl string
	switch {
	case t.Kind == KindEnum:
		decl = "enum class " + t.Name + " : " + t.Underlying + ";"
	case len(t.GenericArguments) > 0:
		decl = "template <" + typenames(t.TemplateParameters) + "> " + t.Keyword() + " " + t.Name + ";"
	default:
		decl = t.Keyword() + " " + t.Name + ";"
	}
	if len(t.Namespaces) == 0 {
		return decl
	}
	return "namespace " + strings.Join(t.Namespaces, "::") + " {\n" + decl + "\n}"
}

// Keyword is the class-key used to declare t.
func (t CppType) Keyword() string {
	if t.Kind == KindBlittableStruct {
		return "struct"
	}
	return "class"
}

// Definition returns the generic definition of a constructed type, which
// is what a forward declaration names.
func (t CppType) Definition() CppType {
	t.GenericArguments = nil
	t.Flags = 0
	return t
}

// Referenced returns t and every type mentioned in its generic arguments,
// without modifiers.
func (t CppType) Referenced() []CppType {
	out := []CppType{t.Plain()}
	for _, a := range t.GenericArguments {
		out = append(out, a.Referenced()...)
	}
	return out
}

func typenames(params []string) string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = "typename " + p
	}
	return strings.Join(out, ", ")
}

// ConversionToInterop converts a native expression of type t to its
// interop representation. Wrappers lend their handle.
func (t CppType) ConversionToInterop(expr string) string {
	switch t.Kind {
	case KindPrimitive:
		if t.Name == "bool" {
			return "((" + expr + ") ? 1 : 0)"
		}
		return expr
	case KindBlittableStruct:
		return expr
	case KindEnum:
		return "static_cast<" + t.AsInteropType().Declaration() + ">(" + expr + ")"
	}
	return expr + ".GetHandle().GetRaw()"
}

// ConversionToInteropTransferringOwnership is ConversionToInterop for a
// value whose handle is handed to the managed side, which frees it.
func (t CppType) ConversionToInteropTransferringOwnership(expr string) string {
	if t.Kind.IsWrapper() {
		return expr + ".GetHandle().Release()"
	}
	return t.ConversionToInterop(expr)
}

// ConversionFromInterop converts an interop expression back to t. Wrappers
// take ownership of the handle.
func (t CppType) ConversionFromInterop(expr string) string {
	switch t.Kind {
	case KindPrimitive:
		if t.Name == "bool" {
			return "!!" + expr
		}
		return expr
	case KindBlittableStruct:
		return expr
	case KindEnum:
		return "static_cast<" + t.Plain().Declaration() + ">(" + expr + ")"
	}
	handle := t.handle
	if handle == "" {
		handle = "::Reinterop::ObjectHandle"
	}
	return t.Plain().Declaration() + "(" + handle + "(" + expr + "))"
}
