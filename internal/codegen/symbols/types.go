// Package symbols models the managed program the generator reads: types,
// their members, attributes and the resolved expression trees of discovery
// sites. It plays the role of the host compiler's semantic model.
package symbols

import (
	"strconv"
	"strings"
)

// Shape is the declared form of a managed type.
type Shape string

const (
	ShapeClass         Shape = "class"
	ShapeStruct        Shape = "struct"
	ShapeInterface     Shape = "interface"
	ShapeEnum          Shape = "enum"
	ShapeDelegate      Shape = "delegate"
	ShapeTypeParameter Shape = "typeparam"
)

// SpecialType tags the runtime types the generator treats specially.
type SpecialType int

const (
	SpecialNone SpecialType = iota
	SpecialVoid
	SpecialBoolean
	SpecialChar
	SpecialSByte
	SpecialByte
	SpecialInt16
	SpecialUInt16
	SpecialInt32
	SpecialUInt32
	SpecialInt64
	SpecialUInt64
	SpecialSingle
	SpecialDouble
	SpecialIntPtr
	SpecialUIntPtr
	SpecialObject
	SpecialValueType
	SpecialEnum
	SpecialString
	SpecialDelegate
	SpecialMulticastDelegate
)

// IsPrimitive reports whether s is one of the runtime primitive kinds,
// including void.
func (s SpecialType) IsPrimitive() bool {
	return s >= SpecialVoid && s <= SpecialUIntPtr
}

// Accessibility of a member or type.
type Accessibility string

const (
	Public            Accessibility = "public"
	Internal          Accessibility = "internal"
	Protected         Accessibility = "protected"
	ProtectedInternal Accessibility = "protected internal"
	Private           Accessibility = "private"
)

// Attribute is an attribute application with its string literal arguments.
type Attribute struct {
	Name string
	Args []string
}

// Type is a managed type symbol. Types are immutable once the Compilation
// that owns them has been built.
type Type struct {
	Namespace string
	Name      string
	Shape     Shape
	Special   SpecialType
	IsStatic  bool

	BaseType   *Type
	Interfaces []*Type
	Attributes []Attribute

	// TypeParameters is set on generic definitions; TypeArguments and
	// Definition on constructed types.
	TypeParameters []*Type
	TypeArguments  []*Type
	Definition     *Type

	Fields       []*Field
	Constructors []*Method
	Methods      []*Method
	Properties   []*Property
	Events       []*Event

	EnumValues     []EnumValue
	EnumUnderlying *Type
	Invoke         *Method

	// owner is the declaring method or type of a type parameter.
	owner string
}

// EnumValue is a named enum constant.
type EnumValue struct {
	Name  string
	Value int64
}

// FullName is the namespace-qualified name without generic arguments.
func (t *Type) FullName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// Key identifies the type structurally. Two symbols with the same key are
// the same type.
func (t *Type) Key() string {
	if t == nil {
		return ""
	}
	if t.Shape == ShapeTypeParameter {
		return "!" + t.owner + "." + t.Name
	}
	name := t.FullName()
	switch {
	case len(t.TypeArguments) > 0:
		args := make([]string, len(t.TypeArguments))
		for i, a := range t.TypeArguments {
			args[i] = a.Key()
		}
		return name + "<" + strings.Join(args, ",") + ">"
	case len(t.TypeParameters) > 0:
		return name + "`" + strconv.Itoa(len(t.TypeParameters))
	}
	return name
}

// String renders the type the way C# source would spell it.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.Shape == ShapeTypeParameter {
		return t.Name
	}
	name := t.FullName()
	var args []*Type
	if len(t.TypeArguments) > 0 {
		args = t.TypeArguments
	} else if len(t.TypeParameters) > 0 {
		args = t.TypeParameters
	}
	if len(args) == 0 {
		return name
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return name + "<" + strings.Join(parts, ", ") + ">"
}

// IsValueType reports whether the type has value semantics.
func (t *Type) IsValueType() bool {
	return t.Shape == ShapeStruct || t.Shape == ShapeEnum
}

// IsReferenceType reports whether the type has reference semantics.
func (t *Type) IsReferenceType() bool {
	switch t.Shape {
	case ShapeClass, ShapeInterface, ShapeDelegate:
		return true
	}
	return false
}

// IsOpenGeneric reports whether the type is a generic definition or
// mentions a type parameter anywhere in its arguments.
func (t *Type) IsOpenGeneric() bool {
	if t.Shape == ShapeTypeParameter {
		return true
	}
	if len(t.TypeParameters) > 0 && len(t.TypeArguments) == 0 {
		return true
	}
	for _, a := range t.TypeArguments {
		if a.IsOpenGeneric() {
			return true
		}
	}
	return false
}

// Attribute returns the first attribute with the given name.
func (t *Type) Attribute(name string) (Attribute, bool) {
	for _, a := range t.Attributes {
		if a.Name == name || a.Name == name+"Attribute" {
			return a, true
		}
	}
	return Attribute{}, false
}

// DerivesFrom reports whether base appears anywhere in t's base chain.
func (t *Type) DerivesFrom(special SpecialType) bool {
	for b := t.BaseType; b != nil; b = b.BaseType {
		if b.Special == special {
			return true
		}
	}
	return false
}

// AllInterfaces returns every interface t implements, directly, through
// other interfaces, or through its base types. Order is breadth-first in
// declaration order, without duplicates.
func (t *Type) AllInterfaces() []*Type {
	var out []*Type
	seen := map[string]bool{}
	var queue []*Type
	for c := t; c != nil; c = c.BaseType {
		queue = append(queue, c.Interfaces...)
	}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		if seen[i.Key()] {
			continue
		}
		seen[i.Key()] = true
		out = append(out, i)
		queue = append(queue, i.Interfaces...)
	}
	return out
}

// MethodKind distinguishes ordinary methods from constructors and accessors.
type MethodKind string

const (
	MethodOrdinary    MethodKind = "method"
	MethodConstructor MethodKind = "constructor"
	MethodGetter      MethodKind = "get"
	MethodSetter      MethodKind = "set"
	MethodEventAdd    MethodKind = "add"
	MethodEventRemove MethodKind = "remove"
)

// Parameter of a method.
type Parameter struct {
	Name    string
	Type    *Type
	RefKind string // "", "ref", "out" or "in"
}

// Method is a method, constructor or accessor symbol.
type Method struct {
	Name           string
	ContainingType *Type
	Kind           MethodKind
	IsStatic       bool
	IsPartial      bool
	Accessibility  Accessibility
	Parameters     []*Parameter
	ReturnType     *Type

	TypeParameters []*Type
	TypeArguments  []*Type
	Definition     *Method

	// Body holds the statements of a discovery-site method.
	Body []Expr
}

// Key identifies the method by containing type, name, generic arity or
// arguments, and parameter types.
func (m *Method) Key() string {
	var b strings.Builder
	b.WriteString(m.ContainingType.Key())
	b.WriteString(".")
	b.WriteString(m.Name)
	switch {
	case len(m.TypeArguments) > 0:
		b.WriteString("<")
		for i, a := range m.TypeArguments {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(a.Key())
		}
		b.WriteString(">")
	case len(m.TypeParameters) > 0:
		b.WriteString("`")
		b.WriteString(strconv.Itoa(len(m.TypeParameters)))
	}
	b.WriteString("(")
	for i, p := range m.Parameters {
		if i > 0 {
			b.WriteString(",")
		}
		if p.RefKind != "" {
			b.WriteString(p.RefKind)
			b.WriteString(" ")
		}
		b.WriteString(p.Type.Key())
	}
	b.WriteString(")")
	return b.String()
}

// IsGenericDefinition reports whether the method declares type parameters
// that have not been bound.
func (m *Method) IsGenericDefinition() bool {
	return len(m.TypeParameters) > 0 && len(m.TypeArguments) == 0
}

// ReturnsVoid reports whether the method has no return value.
func (m *Method) ReturnsVoid() bool {
	return m.ReturnType == nil || m.ReturnType.Special == SpecialVoid
}

// Property symbol with its accessor methods.
type Property struct {
	Name           string
	ContainingType *Type
	Type           *Type
	IsStatic       bool
	Getter         *Method
	Setter         *Method
}

// Key identifies the property.
func (p *Property) Key() string {
	return p.ContainingType.Key() + "." + p.Name
}

// Event symbol with its accessor methods.
type Event struct {
	Name           string
	ContainingType *Type
	Type           *Type
	IsStatic       bool
	Adder          *Method
	Remover        *Method
}

// Key identifies the event.
func (e *Event) Key() string {
	return e.ContainingType.Key() + "." + e.Name
}

// Field symbol. Order is the declaration index within the containing type.
type Field struct {
	Name           string
	ContainingType *Type
	Type           *Type
	IsStatic       bool
	Accessibility  Accessibility
	Order          int
}

// Key identifies the field.
func (f *Field) Key() string {
	return f.ContainingType.Key() + "." + f.Name
}
