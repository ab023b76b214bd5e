package symbols

import (
	"fmt"
	"strings"
)

// TypeRef is a parsed type reference such as `System.Collections.Generic.List<System.String>`.
type TypeRef struct {
	Name string
	Args []TypeRef
}

func (r TypeRef) String() string {
	if len(r.Args) == 0 {
		return r.Name
	}
	parts := make([]string, len(r.Args))
	for i, a := range r.Args {
		parts[i] = a.String()
	}
	return r.Name + "<" + strings.Join(parts, ", ") + ">"
}

// MemberRef is a parsed member reference: a containing type, a member name,
// optional method type arguments, and an optional parameter list. A nil
// Params means the reference omitted the parentheses.
type MemberRef struct {
	Type     TypeRef
	Member   string
	TypeArgs []TypeRef
	Params   []TypeRef
	HasArgs  bool
}

// ParseTypeRef parses a type reference.
func ParseTypeRef(s string) (TypeRef, error) {
	p := &refParser{src: s}
	r, err := p.typeRef()
	if err != nil {
		return TypeRef{}, err
	}
	p.skipSpace()
	if !p.done() {
		return TypeRef{}, fmt.Errorf("unexpected %q at offset %d in %q", p.src[p.pos:], p.pos, s)
	}
	return r, nil
}

// ParseMemberRef parses `Type.Member<TArgs>(Params)`. When isConstructor is
// set the whole dotted name is the type, and only the parameter list follows.
func ParseMemberRef(s string, isConstructor bool) (MemberRef, error) {
	s = strings.TrimSpace(s)
	head, params, hasArgs, err := splitParams(s)
	if err != nil {
		return MemberRef{}, err
	}
	ref := MemberRef{HasArgs: hasArgs}
	for _, ps := range params {
		pr, err := ParseTypeRef(ps)
		if err != nil {
			return MemberRef{}, err
		}
		ref.Params = append(ref.Params, pr)
	}
	if isConstructor {
		t, err := ParseTypeRef(head)
		if err != nil {
			return MemberRef{}, err
		}
		ref.Type = t
		ref.Member = ".ctor"
		return ref, nil
	}

	// The member name is the last dotted segment outside angle brackets.
	depth, cut := 0, -1
	for i := 0; i < len(head); i++ {
		switch head[i] {
		case '<':
			depth++
		case '>':
			depth--
		case '.':
			if depth == 0 {
				cut = i
			}
		}
	}
	if cut <= 0 {
		return MemberRef{}, fmt.Errorf("member reference %q has no containing type", s)
	}
	t, err := ParseTypeRef(head[:cut])
	if err != nil {
		return MemberRef{}, err
	}
	ref.Type = t
	member, err := ParseTypeRef(head[cut+1:])
	if err != nil {
		return MemberRef{}, err
	}
	ref.Member = member.Name
	ref.TypeArgs = member.Args
	return ref, nil
}

// splitParams separates a trailing `(...)` parameter list.
func splitParams(s string) (head string, params []string, hasArgs bool, err error) {
	if !strings.HasSuffix(s, ")") {
		return s, nil, false, nil
	}
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return "", nil, false, fmt.Errorf("unbalanced parentheses in %q", s)
	}
	inner := strings.TrimSpace(s[open+1 : len(s)-1])
	head = strings.TrimSpace(s[:open])
	if inner == "" {
		return head, nil, true, nil
	}
	depth, start := 0, 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				params = append(params, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	params = append(params, strings.TrimSpace(inner[start:]))
	return head, params, true, nil
}

type refParser struct {
	src string
	pos int
}

func (p *refParser) done() bool { return p.pos >= len(p.src) }

func (p *refParser) skipSpace() {
	for !p.done() && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *refParser) typeRef() (TypeRef, error) {
	p.skipSpace()
	start := p.pos
	for !p.done() {
		c := p.src[p.pos]
		if c == '<' || c == '>' || c == ',' || c == ' ' {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return TypeRef{}, fmt.Errorf("expected type name at offset %d in %q", start, p.src)
	}
	ref := TypeRef{Name: aliasName(p.src[start:p.pos])}
	p.skipSpace()
	if p.done() || p.src[p.pos] != '<' {
		return ref, nil
	}
	p.pos++
	for {
		arg, err := p.typeRef()
		if err != nil {
			return TypeRef{}, err
		}
		ref.Args = append(ref.Args, arg)
		p.skipSpace()
		if p.done() {
			return TypeRef{}, fmt.Errorf("unterminated type argument list in %q", p.src)
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.src[p.pos] == '>' {
			p.pos++
			return ref, nil
		}
		return TypeRef{}, fmt.Errorf("unexpected %q in %q", p.src[p.pos], p.src)
	}
}

var csharpAliases = map[string]string{
	"void":    "System.Void",
	"bool":    "System.Boolean",
	"char":    "System.Char",
	"sbyte":   "System.SByte",
	"byte":    "System.Byte",
	"short":   "System.Int16",
	"ushort":  "System.UInt16",
	"int":     "System.Int32",
	"uint":    "System.UInt32",
	"long":    "System.Int64",
	"ulong":   "System.UInt64",
	"float":   "System.Single",
	"double":  "System.Double",
	"nint":    "System.IntPtr",
	"nuint":   "System.UIntPtr",
	"object":  "System.Object",
	"string":  "System.String",
}

// aliasName maps C# keyword aliases to their runtime type names.
func aliasName(name string) string {
	if full, ok := csharpAliases[name]; ok {
		return full
	}
	return name
}
