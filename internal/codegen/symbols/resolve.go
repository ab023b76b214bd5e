package symbols

// ResolveMethod resolves a method reference such as `Ns.Type.Method(System.Int32)`
// or `Ns.Type.Method<System.String>`. Generic method definitions are
// constructed with the given type arguments. It returns nil when no member
// matches or when the reference is ambiguous.
func (c *Compilation) ResolveMethod(s string) *Method {
	ref, err := ParseMemberRef(s, false)
	if err != nil {
		return nil
	}
	owner := c.Resolve(ref.Type, nil)
	if owner == nil {
		return nil
	}
	typeArgs, ok := c.resolveAll(ref.TypeArgs)
	if !ok {
		return nil
	}
	for t := owner; t != nil; t = t.BaseType {
		var candidates []*Method
		for _, m := range methodsOf(t) {
			if m.Name != ref.Member {
				continue
			}
			if len(typeArgs) > 0 {
				if len(m.TypeParameters) != len(typeArgs) {
					continue
				}
				m = c.ConstructMethod(m, typeArgs)
				if m == nil {
					continue
				}
			}
			candidates = append(candidates, m)
		}
		if m := c.pick(candidates, ref); m != nil {
			return m
		}
		if len(candidates) > 0 {
			return nil
		}
	}
	return nil
}

// ResolveConstructor resolves `Ns.Type(ParamType, ...)`.
func (c *Compilation) ResolveConstructor(s string) *Method {
	ref, err := ParseMemberRef(s, true)
	if err != nil {
		return nil
	}
	t := c.Resolve(ref.Type, nil)
	if t == nil {
		return nil
	}
	return c.pick(t.Constructors, ref)
}

// ResolveMember resolves a property, field or event reference. Properties
// win over fields and events of the same name, and members declared on a
// derived type hide those of its bases.
func (c *Compilation) ResolveMember(s string) Symbol {
	ref, err := ParseMemberRef(s, false)
	if err != nil {
		return nil
	}
	owner := c.Resolve(ref.Type, nil)
	if owner == nil {
		return nil
	}
	for t := owner; t != nil; t = t.BaseType {
		for _, p := range t.Properties {
			if p.Name == ref.Member {
				return p
			}
		}
		for _, f := range t.Fields {
			if f.Name == ref.Member {
				return f
			}
		}
		for _, e := range t.Events {
			if e.Name == ref.Member {
				return e
			}
		}
	}
	return nil
}

func methodsOf(t *Type) []*Method {
	out := append([]*Method(nil), t.Methods...)
	if t.Invoke != nil {
		out = append(out, t.Invoke)
	}
	for _, p := range t.Properties {
		if p.Getter != nil {
			out = append(out, p.Getter)
		}
		if p.Setter != nil {
			out = append(out, p.Setter)
		}
	}
	for _, e := range t.Events {
		out = append(out, e.Adder, e.Remover)
	}
	return out
}

// pick selects the single candidate matching the reference's parameter list.
// Without a parameter list the name alone must be unambiguous.
func (c *Compilation) pick(candidates []*Method, ref MemberRef) *Method {
	if !ref.HasArgs {
		if len(candidates) == 1 {
			return candidates[0]
		}
		return nil
	}
	params, ok := c.resolveAll(ref.Params)
	if !ok {
		return nil
	}
	var found *Method
	for _, m := range candidates {
		if len(m.Parameters) != len(params) {
			continue
		}
		match := true
		for i, p := range m.Parameters {
			if p.Type == nil || p.Type.Key() != params[i].Key() {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		if found != nil {
			return nil
		}
		found = m
	}
	return found
}

func (c *Compilation) resolveAll(refs []TypeRef) ([]*Type, bool) {
	if len(refs) == 0 {
		return nil, true
	}
	out := make([]*Type, len(refs))
	for i, r := range refs {
		out[i] = c.Resolve(r, nil)
		if out[i] == nil {
			return nil, false
		}
	}
	return out, true
}
