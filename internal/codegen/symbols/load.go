package symbols

import (
	"fmt"
	"strings"
)

// Load builds a compilation from program model documents. Type references
// that do not resolve leave nil symbols behind; only structural problems
// (duplicate or malformed definitions) are errors.
func Load(docs ...*Document) (*Compilation, error) {
	c := NewCompilation()
	l := &loader{c: c}

	// Declare every type first so members may reference any of them.
	for _, doc := range docs {
		for i := range doc.Types {
			if err := l.declare(&doc.Types[i]); err != nil {
				return nil, err
			}
		}
	}
	for _, p := range l.pending {
		if err := l.defineMembers(p); err != nil {
			return nil, err
		}
	}
	c.refill()
	for _, p := range l.pending {
		l.defineBodies(p)
	}
	return c, nil
}

type pendingType struct {
	doc   *TypeDoc
	t     *Type
	scope map[string]*Type
}

type loader struct {
	c       *Compilation
	pending []*pendingType
}

func parseShape(kind string) (Shape, error) {
	switch strings.ToLower(kind) {
	case "", "class":
		return ShapeClass, nil
	case "struct":
		return ShapeStruct, nil
	case "interface":
		return ShapeInterface, nil
	case "enum":
		return ShapeEnum, nil
	case "delegate":
		return ShapeDelegate, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownShape, kind)
}

func parseAccess(s string, fallback Accessibility) Accessibility {
	switch Accessibility(s) {
	case Public, Internal, Protected, ProtectedInternal, Private:
		return Accessibility(s)
	}
	return fallback
}

func (l *loader) declare(doc *TypeDoc) error {
	shape, err := parseShape(doc.Kind)
	if err != nil {
		return fmt.Errorf("type %s: %w", doc.Name, err)
	}
	ns, name := splitFullName(doc.Name)
	t := &Type{Namespace: ns, Name: name, Shape: shape, IsStatic: doc.Static}
	for _, a := range doc.Attributes {
		t.Attributes = append(t.Attributes, Attribute{Name: a.Name, Args: a.Args})
	}
	scope := map[string]*Type{}
	owner := doc.Name + "`" + fmt.Sprint(len(doc.TypeParams))
	for _, tp := range doc.TypeParams {
		p := &Type{Name: tp, Shape: ShapeTypeParameter, owner: owner}
		t.TypeParameters = append(t.TypeParameters, p)
		scope[tp] = p
	}
	if err := l.c.Add(t); err != nil {
		return err
	}
	l.pending = append(l.pending, &pendingType{doc: doc, t: t, scope: scope})
	return nil
}

func (l *loader) resolve(s string, scope map[string]*Type) *Type {
	if s == "" {
		return nil
	}
	return l.c.ResolveString(s, scope)
}

func (l *loader) defineMembers(p *pendingType) error {
	doc, t, scope := p.doc, p.t, p.scope

	switch {
	case doc.Base != "":
		t.BaseType = l.resolve(doc.Base, scope)
	case t.Shape == ShapeClass:
		t.BaseType = l.c.Special(SpecialObject)
	case t.Shape == ShapeStruct:
		t.BaseType = l.c.Special(SpecialValueType)
	case t.Shape == ShapeEnum:
		t.BaseType = l.c.Special(SpecialEnum)
	case t.Shape == ShapeDelegate:
		t.BaseType = l.c.Special(SpecialMulticastDelegate)
	}
	for _, i := range doc.Interfaces {
		if it := l.resolve(i, scope); it != nil {
			t.Interfaces = append(t.Interfaces, it)
		}
	}

	if t.Shape == ShapeEnum {
		t.EnumUnderlying = l.resolve(doc.Underlying, scope)
		if t.EnumUnderlying == nil {
			t.EnumUnderlying = l.c.Special(SpecialInt32)
		}
		for _, v := range doc.Values {
			t.EnumValues = append(t.EnumValues, EnumValue{Name: v.Name, Value: v.Value})
		}
	}

	for i, f := range doc.Fields {
		t.Fields = append(t.Fields, &Field{
			Name:           f.Name,
			ContainingType: t,
			Type:           l.resolve(f.Type, scope),
			IsStatic:       f.Static,
			Accessibility:  parseAccess(f.Access, Public),
			Order:          i,
		})
	}

	for i := range doc.Constructors {
		m := l.method(&doc.Constructors[i], t, scope, MethodConstructor)
		m.Name = ".ctor"
		m.ReturnType = l.c.Special(SpecialVoid)
		t.Constructors = append(t.Constructors, m)
	}
	for i := range doc.Methods {
		t.Methods = append(t.Methods, l.method(&doc.Methods[i], t, scope, MethodOrdinary))
	}
	if doc.Invoke != nil {
		inv := *doc.Invoke
		inv.Name = "Invoke"
		t.Invoke = l.method(&inv, t, scope, MethodOrdinary)
	}

	for _, pd := range doc.Properties {
		pt := l.resolve(pd.Type, scope)
		prop := &Property{Name: pd.Name, ContainingType: t, Type: pt, IsStatic: pd.Static}
		if pd.Get || !pd.Set {
			prop.Getter = &Method{
				Name: "get_" + pd.Name, ContainingType: t, Kind: MethodGetter,
				IsStatic: pd.Static, Accessibility: Public, ReturnType: pt,
			}
		}
		if pd.Set {
			prop.Setter = &Method{
				Name: "set_" + pd.Name, ContainingType: t, Kind: MethodSetter,
				IsStatic: pd.Static, Accessibility: Public, ReturnType: l.c.Special(SpecialVoid),
				Parameters: []*Parameter{{Name: "value", Type: pt}},
			}
		}
		t.Properties = append(t.Properties, prop)
	}

	for _, ed := range doc.Events {
		et := l.resolve(ed.Type, scope)
		void := l.c.Special(SpecialVoid)
		ev := &Event{Name: ed.Name, ContainingType: t, Type: et, IsStatic: ed.Static}
		ev.Adder = &Method{
			Name: "add_" + ed.Name, ContainingType: t, Kind: MethodEventAdd, IsStatic: ed.Static,
			Accessibility: Public, ReturnType: void, Parameters: []*Parameter{{Name: "value", Type: et}},
		}
		ev.Remover = &Method{
			Name: "remove_" + ed.Name, ContainingType: t, Kind: MethodEventRemove, IsStatic: ed.Static,
			Accessibility: Public, ReturnType: void, Parameters: []*Parameter{{Name: "value", Type: et}},
		}
		t.Events = append(t.Events, ev)
	}
	return nil
}

func (l *loader) method(doc *MethodDoc, t *Type, typeScope map[string]*Type, kind MethodKind) *Method {
	m := &Method{
		Name:           doc.Name,
		ContainingType: t,
		Kind:           kind,
		IsStatic:       doc.Static,
		IsPartial:      doc.Partial,
		Accessibility:  parseAccess(doc.Access, Public),
	}
	if doc.Partial && doc.Access == "" {
		m.Accessibility = Private
	}
	scope := typeScope
	if len(doc.TypeParams) > 0 {
		scope = make(map[string]*Type, len(typeScope)+len(doc.TypeParams))
		for k, v := range typeScope {
			scope[k] = v
		}
		owner := t.Key() + "." + doc.Name + "`" + fmt.Sprint(len(doc.TypeParams))
		for _, tp := range doc.TypeParams {
			p := &Type{Name: tp, Shape: ShapeTypeParameter, owner: owner}
			m.TypeParameters = append(m.TypeParameters, p)
			scope[tp] = p
		}
	}
	if doc.Returns == "" {
		m.ReturnType = l.c.Special(SpecialVoid)
	} else {
		m.ReturnType = l.resolve(doc.Returns, scope)
	}
	for _, pd := range doc.Params {
		m.Parameters = append(m.Parameters, &Parameter{Name: pd.Name, Type: l.resolve(pd.Type, scope), RefKind: pd.Ref})
	}
	return m
}

func (l *loader) defineBodies(p *pendingType) {
	for i, md := range p.doc.Methods {
		if len(md.Body) == 0 {
			continue
		}
		m := p.t.Methods[i]
		for j := range md.Body {
			m.Body = append(m.Body, l.expr(&md.Body[j]))
		}
	}
}

func (l *loader) exprs(docs []ExprDoc) []Expr {
	out := make([]Expr, 0, len(docs))
	for i := range docs {
		out = append(out, l.expr(&docs[i]))
	}
	return out
}

func (l *loader) optExpr(doc *ExprDoc) Expr {
	if doc == nil {
		return nil
	}
	return l.expr(doc)
}

func (l *loader) expr(doc *ExprDoc) Expr {
	switch {
	case doc.Call != "":
		return &Invocation{Method: l.c.ResolveMethod(doc.Call), Target: l.optExpr(doc.Target), Args: l.exprs(doc.Args)}
	case doc.New != "":
		return &ObjectCreation{Constructor: l.c.ResolveConstructor(doc.New), Args: l.exprs(doc.Args)}
	case doc.Get != "":
		return &MemberAccess{Member: l.c.ResolveMember(doc.Get), Target: l.optExpr(doc.Target)}
	case doc.Set != "":
		left := &MemberAccess{Member: l.c.ResolveMember(doc.Set), Target: l.optExpr(doc.Target)}
		return &Assignment{Left: left, Op: "=", Right: l.optExpr(doc.Value)}
	case doc.Add != "":
		left := &MemberAccess{Member: l.c.ResolveMember(doc.Add), Target: l.optExpr(doc.Target)}
		return &Assignment{Left: left, Op: "+=", Right: l.optExpr(doc.Value)}
	case doc.Remove != "":
		left := &MemberAccess{Member: l.c.ResolveMember(doc.Remove), Target: l.optExpr(doc.Target)}
		return &Assignment{Left: left, Op: "-=", Right: l.optExpr(doc.Value)}
	case doc.Cast != "":
		return &Cast{Type: l.c.ResolveString(doc.Cast, nil), Operand: l.optExpr(doc.Value)}
	case doc.Local != "":
		return &LocalDeclaration{Name: doc.Local, Type: l.c.ResolveString(doc.Of, nil), Init: l.optExpr(doc.Value)}
	case doc.Type != "":
		id := &Identifier{Name: doc.Type}
		if t := l.c.ResolveString(doc.Type, nil); t != nil {
			id.Symbol = t
		}
		return id
	}
	return &Literal{Value: doc.Literal}
}
