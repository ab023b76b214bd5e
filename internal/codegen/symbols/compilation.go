package symbols

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrDuplicateType is returned when two documents define the same type.
	ErrDuplicateType = errors.New("duplicate type definition")
	// ErrUnknownShape is returned for a type document with an unrecognized kind.
	ErrUnknownShape = errors.New("unknown type kind")
)

// RuntimeNamespace holds the managed runtime support types.
const RuntimeNamespace = "Reinterop"

// ObjectHandleUtilityName is the managed class that owns object handles.
const ObjectHandleUtilityName = "ObjectHandleUtility"

// Compilation is the set of types known to the generator, keyed by symbol
// identity. Constructed generic types and methods are created on demand
// and cached, so the same instantiation always yields the same pointer.
type Compilation struct {
	types       map[string]*Type
	constructed map[string]*Type
	methods     map[string]*Method
}

var coreTypes = []struct {
	name    string
	shape   Shape
	special SpecialType
}{
	{"System.Object", ShapeClass, SpecialObject},
	{"System.ValueType", ShapeClass, SpecialValueType},
	{"System.Enum", ShapeClass, SpecialEnum},
	{"System.Delegate", ShapeClass, SpecialDelegate},
	{"System.MulticastDelegate", ShapeClass, SpecialMulticastDelegate},
	{"System.String", ShapeClass, SpecialString},
	{"System.Void", ShapeStruct, SpecialVoid},
	{"System.Boolean", ShapeStruct, SpecialBoolean},
	{"System.Char", ShapeStruct, SpecialChar},
	{"System.SByte", ShapeStruct, SpecialSByte},
	{"System.Byte", ShapeStruct, SpecialByte},
	{"System.Int16", ShapeStruct, SpecialInt16},
	{"System.UInt16", ShapeStruct, SpecialUInt16},
	{"System.Int32", ShapeStruct, SpecialInt32},
	{"System.UInt32", ShapeStruct, SpecialUInt32},
	{"System.Int64", ShapeStruct, SpecialInt64},
	{"System.UInt64", ShapeStruct, SpecialUInt64},
	{"System.Single", ShapeStruct, SpecialSingle},
	{"System.Double", ShapeStruct, SpecialDouble},
	{"System.IntPtr", ShapeStruct, SpecialIntPtr},
	{"System.UIntPtr", ShapeStruct, SpecialUIntPtr},
	{"System.IDisposable", ShapeInterface, SpecialNone},
}

// NewCompilation returns a compilation holding the core library types and
// the managed runtime support class.
func NewCompilation() *Compilation {
	c := &Compilation{
		types:       map[string]*Type{},
		constructed: map[string]*Type{},
		methods:     map[string]*Method{},
	}
	for _, ct := range coreTypes {
		ns, name := splitFullName(ct.name)
		c.types[ct.name] = &Type{Namespace: ns, Name: name, Shape: ct.shape, Special: ct.special}
	}
	object := c.types["System.Object"]
	valueType := c.types["System.ValueType"]
	for _, t := range c.types {
		switch {
		case t == object:
		case t.Shape == ShapeStruct || t.Special == SpecialEnum:
			t.BaseType = valueType
		case t.Special == SpecialMulticastDelegate:
			t.BaseType = c.types["System.Delegate"]
		case t.Shape == ShapeClass:
			t.BaseType = object
		}
	}
	c.addRuntimeSupport()
	return c
}

func (c *Compilation) addRuntimeSupport() {
	intPtr := c.types["System.IntPtr"]
	object := c.types["System.Object"]
	void := c.types["System.Void"]
	t := &Type{
		Namespace: RuntimeNamespace,
		Name:      ObjectHandleUtilityName,
		Shape:     ShapeClass,
		IsStatic:  true,
		BaseType:  object,
	}
	method := func(name string, ret *Type, params ...*Parameter) *Method {
		return &Method{
			Name:           name,
			ContainingType: t,
			Kind:           MethodOrdinary,
			IsStatic:       true,
			Accessibility:  Public,
			Parameters:     params,
			ReturnType:     ret,
		}
	}
	t.Methods = []*Method{
		method("CreateHandle", intPtr, &Parameter{Name: "o", Type: object}),
		method("CopyHandle", intPtr, &Parameter{Name: "handle", Type: intPtr}),
		method("FreeHandle", void, &Parameter{Name: "handle", Type: intPtr}),
		method("GetObjectFromHandle", object, &Parameter{Name: "handle", Type: intPtr}),
	}
	c.types[t.FullName()] = t
}

// ObjectHandleUtility returns the managed runtime support class.
func (c *Compilation) ObjectHandleUtility() *Type {
	return c.types[RuntimeNamespace+"."+ObjectHandleUtilityName]
}

// Special returns the core type for a special type tag.
func (c *Compilation) Special(s SpecialType) *Type {
	for _, ct := range coreTypes {
		if ct.special == s {
			return c.types[ct.name]
		}
	}
	return nil
}

// Add registers a type definition.
func (c *Compilation) Add(t *Type) error {
	key := t.FullName()
	if len(t.TypeParameters) > 0 {
		key += "`" + strconv.Itoa(len(t.TypeParameters))
	}
	if _, ok := c.types[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, key)
	}
	c.types[key] = t
	return nil
}

// Types returns every registered definition, sorted by key.
func (c *Compilation) Types() []*Type {
	keys := make([]string, 0, len(c.types))
	for k := range c.types {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*Type, len(keys))
	for i, k := range keys {
		out[i] = c.types[k]
	}
	return out
}

// Lookup finds the definition named fullName with the given generic arity.
func (c *Compilation) Lookup(fullName string, arity int) *Type {
	if arity > 0 {
		return c.types[fullName+"`"+strconv.Itoa(arity)]
	}
	return c.types[fullName]
}

// Resolve turns a type reference into a type. Type parameter names in scope
// are looked up first. It returns nil when the reference does not resolve.
func (c *Compilation) Resolve(ref TypeRef, scope map[string]*Type) *Type {
	if len(ref.Args) == 0 {
		if tp, ok := scope[ref.Name]; ok {
			return tp
		}
		return c.Lookup(ref.Name, 0)
	}
	def := c.Lookup(ref.Name, len(ref.Args))
	if def == nil {
		return nil
	}
	args := make([]*Type, len(ref.Args))
	for i, a := range ref.Args {
		args[i] = c.Resolve(a, scope)
		if args[i] == nil {
			return nil
		}
	}
	return c.Construct(def, args)
}

// ResolveString parses and resolves a type reference string.
func (c *Compilation) ResolveString(s string, scope map[string]*Type) *Type {
	ref, err := ParseTypeRef(s)
	if err != nil {
		return nil
	}
	return c.Resolve(ref, scope)
}

// Construct instantiates a generic definition with concrete arguments.
func (c *Compilation) Construct(def *Type, args []*Type) *Type {
	if len(def.TypeParameters) != len(args) {
		return nil
	}
	keyParts := make([]string, len(args))
	for i, a := range args {
		keyParts[i] = a.Key()
	}
	key := def.FullName() + "<" + strings.Join(keyParts, ",") + ">"
	if t, ok := c.constructed[key]; ok {
		return t
	}
	t := &Type{
		Namespace:      def.Namespace,
		Name:           def.Name,
		Shape:          def.Shape,
		Special:        def.Special,
		IsStatic:       def.IsStatic,
		Attributes:     def.Attributes,
		TypeParameters: def.TypeParameters,
		TypeArguments:  args,
		Definition:     def,
		EnumValues:     def.EnumValues,
	}
	c.constructed[key] = t
	c.fill(t)
	return t
}

// fill substitutes the definition's members into a constructed type. It is
// rerun by Load once every definition has its members, because a
// constructed type may be created while its definition is still empty.
func (c *Compilation) fill(t *Type) {
	def := t.Definition
	sub := substitution{}
	for i, tp := range def.TypeParameters {
		sub[tp.Key()] = t.TypeArguments[i]
	}
	t.Attributes = def.Attributes
	t.EnumValues = def.EnumValues
	t.BaseType = c.substitute(def.BaseType, sub)
	t.EnumUnderlying = def.EnumUnderlying
	t.Interfaces, t.Fields, t.Constructors, t.Methods = nil, nil, nil, nil
	t.Properties, t.Events, t.Invoke = nil, nil, nil
	for _, i := range def.Interfaces {
		t.Interfaces = append(t.Interfaces, c.substitute(i, sub))
	}
	for _, f := range def.Fields {
		t.Fields = append(t.Fields, &Field{
			Name:           f.Name,
			ContainingType: t,
			Type:           c.substitute(f.Type, sub),
			IsStatic:       f.IsStatic,
			Accessibility:  f.Accessibility,
			Order:          f.Order,
		})
	}
	for _, m := range def.Constructors {
		t.Constructors = append(t.Constructors, c.substituteMethod(m, t, sub))
	}
	for _, m := range def.Methods {
		t.Methods = append(t.Methods, c.substituteMethod(m, t, sub))
	}
	if def.Invoke != nil {
		t.Invoke = c.substituteMethod(def.Invoke, t, sub)
	}
	for _, p := range def.Properties {
		np := &Property{Name: p.Name, ContainingType: t, Type: c.substitute(p.Type, sub), IsStatic: p.IsStatic}
		if p.Getter != nil {
			np.Getter = c.substituteMethod(p.Getter, t, sub)
		}
		if p.Setter != nil {
			np.Setter = c.substituteMethod(p.Setter, t, sub)
		}
		t.Properties = append(t.Properties, np)
	}
	for _, e := range def.Events {
		ne := &Event{Name: e.Name, ContainingType: t, Type: c.substitute(e.Type, sub), IsStatic: e.IsStatic}
		if e.Adder != nil {
			ne.Adder = c.substituteMethod(e.Adder, t, sub)
		}
		if e.Remover != nil {
			ne.Remover = c.substituteMethod(e.Remover, t, sub)
		}
		t.Events = append(t.Events, ne)
	}
}

// refill re-substitutes every constructed type created so far.
func (c *Compilation) refill() {
	snapshot := make([]*Type, 0, len(c.constructed))
	for _, t := range c.constructed {
		snapshot = append(snapshot, t)
	}
	for _, t := range snapshot {
		c.fill(t)
	}
}

// ConstructMethod binds the type parameters of a generic method definition.
func (c *Compilation) ConstructMethod(def *Method, args []*Type) *Method {
	if len(def.TypeParameters) != len(args) {
		return nil
	}
	sub := substitution{}
	for i, tp := range def.TypeParameters {
		sub[tp.Key()] = args[i]
	}
	m := c.substituteMethod(def, def.ContainingType, sub)
	m.TypeArguments = args
	m.Definition = def
	if cached, ok := c.methods[m.Key()]; ok {
		return cached
	}
	c.methods[m.Key()] = m
	return m
}

type substitution map[string]*Type

func (c *Compilation) substitute(t *Type, sub substitution) *Type {
	if t == nil {
		return nil
	}
	if r, ok := sub[t.Key()]; ok {
		return r
	}
	if len(t.TypeArguments) == 0 {
		return t
	}
	args := make([]*Type, len(t.TypeArguments))
	changed := false
	for i, a := range t.TypeArguments {
		args[i] = c.substitute(a, sub)
		changed = changed || args[i] != a
	}
	if !changed {
		return t
	}
	return c.Construct(t.Definition, args)
}

func (c *Compilation) substituteMethod(m *Method, owner *Type, sub substitution) *Method {
	nm := &Method{
		Name:           m.Name,
		ContainingType: owner,
		Kind:           m.Kind,
		IsStatic:       m.IsStatic,
		IsPartial:      m.IsPartial,
		Accessibility:  m.Accessibility,
		ReturnType:     c.substitute(m.ReturnType, sub),
		TypeParameters: m.TypeParameters,
		TypeArguments:  m.TypeArguments,
		Definition:     m.Definition,
		Body:           m.Body,
	}
	for _, p := range m.Parameters {
		nm.Parameters = append(nm.Parameters, &Parameter{Name: p.Name, Type: c.substitute(p.Type, sub), RefKind: p.RefKind})
	}
	return nm
}

func splitFullName(full string) (namespace, name string) {
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		return full[:i], full[i+1:]
	}
	return "", full
}
