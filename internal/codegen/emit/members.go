package emit

import (
	"strings"

	"github.com/oxidize/oxidize/internal/codegen/common"
	"github.com/oxidize/oxidize/internal/codegen/interop"
	"github.com/oxidize/oxidize/internal/codegen/meta"
	"github.com/oxidize/oxidize/internal/codegen/symbols"
)

type param struct {
	name string
	typ  *symbols.Type
	// declared is the parameter type on the generic definition, when the
	// member is a generic method instantiation.
	declared *symbols.Type
}

// binding is a member bound through one function pointer slot.
type binding struct {
	slotName string
	key      string
	// member is the native member name.
	member string
	// static members have no instance parameter. Constructors are static.
	static bool
	ctor   bool
	params []param
	// ret is the managed type of the produced value, nil for void.
	ret *symbols.Type
	// managed builds the managed expression from the instance (or type)
	// expression and the converted arguments. When statement is set it
	// is used as a statement and produces no value.
	managed   func(target string, args []string) string
	statement bool
	generic   *genericInstance
}

// genericInstance describes one instantiation of a generic method.
type genericInstance struct {
	// declare is set on the first instantiation of the definition, which
	// also declares the member template.
	declare bool
	def     *symbols.Method
	args    []interop.CppType
}

func methodParams(m *symbols.Method) []param {
	out := make([]param, len(m.Parameters))
	for i, p := range m.Parameters {
		out[i] = param{name: p.Name, typ: p.Type}
		if m.Definition != nil && i < len(m.Definition.Parameters) {
			out[i].declared = m.Definition.Parameters[i].Type
		}
	}
	return out
}

func (e *typeEmitter) constructor(m *symbols.Method) {
	t := e.item.Type
	if t.IsStatic || t.Shape == symbols.ShapeInterface {
		e.skip(m.Key(), "type cannot be constructed")
		return
	}
	if reason := unsupportedParameters(m); reason != "" {
		e.skip(m.Key(), reason)
		return
	}
	member := e.self.Name
	if e.kind == interop.KindBlittableStruct {
		member = "Construct"
	}
	e.bind(binding{
		slotName: interop.ConstructorFieldName(m),
		key:      m.Key(),
		member:   member,
		static:   true,
		ctor:     true,
		params:   methodParams(m),
		managed: func(_ string, args []string) string {
			return "new " + interop.CSharpName(t) + "(" + strings.Join(args, ", ") + ")"
		},
	})
}

func (e *typeEmitter) methods() {
	declared := map[string]bool{}
	for _, m := range e.item.SortedMethods() {
		if reason := unsupportedParameters(m); reason != "" {
			e.skip(m.Key(), reason)
			continue
		}
		b := binding{
			slotName: interop.MethodFieldName(m),
			key:      m.Key(),
			member:   m.Name,
			static:   m.IsStatic,
			params:   methodParams(m),
		}
		if !m.ReturnsVoid() {
			b.ret = m.ReturnType
		}
		typeArgs := ""
		if len(m.TypeArguments) > 0 && m.Definition != nil {
			g := &genericInstance{def: m.Definition, declare: !declared[m.Definition.Key()]}
			declared[m.Definition.Key()] = true
			names := make([]string, len(m.TypeArguments))
			for i, a := range m.TypeArguments {
				g.args = append(g.args, e.ctx.CppType(a))
				names[i] = interop.CSharpName(a)
			}
			typeArgs = "<" + strings.Join(names, ", ") + ">"
			b.generic = g
		}
		name := m.Name
		b.managed = func(target string, args []string) string {
			return target + "." + name + typeArgs + "(" + strings.Join(args, ", ") + ")"
		}
		e.bind(b)
	}
}

func (e *typeEmitter) property(p *symbols.Property) {
	if p.Getter != nil {
		e.bind(binding{
			slotName: interop.PropertyGetterFieldName(p),
			key:      p.Key() + "/get",
			member:   p.Name,
			static:   p.IsStatic,
			ret:      p.Type,
			managed: func(target string, _ []string) string {
				return target + "." + p.Name
			},
		})
	}
	if p.Setter == nil {
		return
	}
	if !p.IsStatic && e.isValueType() {
		e.skip(p.Key()+" setter", "value type instances are copied across the boundary")
		return
	}
	e.bind(binding{
		slotName:  interop.PropertySetterFieldName(p),
		key:       p.Key() + "/set",
		member:    p.Name,
		static:    p.IsStatic,
		params:    []param{{name: "value", typ: p.Type}},
		statement: true,
		managed: func(target string, args []string) string {
			return target + "." + p.Name + " = " + args[0]
		},
	})
}

func (e *typeEmitter) event(ev *symbols.Event) {
	if !ev.IsStatic && e.isValueType() {
		e.skip(ev.Key(), "value type instances are copied across the boundary")
		return
	}
	accessors := []struct {
		slot, member, op string
	}{
		{interop.EventAddFieldName(ev), "add_" + ev.Name, " += "},
		{interop.EventRemoveFieldName(ev), "remove_" + ev.Name, " -= "},
	}
	for _, a := range accessors {
		op := a.op
		e.bind(binding{
			slotName:  a.slot,
			key:       ev.Key() + "/" + a.member,
			member:    a.member,
			static:    ev.IsStatic,
			params:    []param{{name: "value", typ: ev.Type}},
			statement: true,
			managed: func(target string, args []string) string {
				return target + "." + ev.Name + op + args[0]
			},
		})
	}
}

// bind emits a member through the common pattern: interop signature,
// function pointer slot, native declaration and definition, and managed
// trampoline.
func (e *typeEmitter) bind(b binding) {
	ctx := e.ctx
	t := e.item.Type
	raw := make([]string, len(b.params))
	for i, p := range b.params {
		raw[i] = p.name
	}
	names := common.ParameterNames(raw, "thiz", "result")

	// Interop signature.
	var params []interopParam
	if !b.static {
		if e.kind == interop.KindBlittableStruct {
			params = append(params, interopParam{name: "thiz", cpp: e.self.Plain(), cs: interop.CSharpName(t)})
		} else {
			params = append(params, interopParam{name: "thiz", cpp: interop.Handle, cs: "System.IntPtr"})
		}
	}
	for i, p := range b.params {
		params = append(params, interopParam{
			name: names[i],
			cpp:  ctx.CppType(p.typ).AsInteropType(),
			cs:   ctx.Interop.CSharpInteropType(p.typ),
		})
	}
	result := b.ret
	if b.ctor {
		result = t
	}
	returnsVoid := result == nil || result.Special == symbols.SpecialVoid

	// Managed trampoline.
	args := make([]string, len(b.params))
	for i, p := range b.params {
		args[i] = ctx.Interop.CSharpConversionFromInterop(p.typ, names[i])
	}
	target := interop.CSharpName(t)
	if !b.static {
		target = e.thisExpression()
	}
	call := b.managed(target, args)
	var body []string
	switch {
	case b.statement || returnsVoid:
		body = []string{call + ";"}
	default:
		conv := ctx.Interop.CSharpConversionToInterop(result, "result")
		if conv == "result" {
			body = []string{"return " + call + ";"}
		} else {
			body = []string{"var result = " + call + ";", "return " + conv + ";"}
		}
	}

	name := e.addSlot(slot{
		name:     b.slotName,
		key:      b.key,
		ret:      ctx.CppType(result).AsInteropType(),
		csReturn: ctx.Interop.CSharpInteropType(result),
		params:   params,
		csBody:   body,
	})

	// Native member.
	var refs []interop.CppType
	nativeParams := make([]string, len(b.params))
	callArgs := []string{}
	if !b.static {
		if e.kind == interop.KindBlittableStruct {
			callArgs = append(callArgs, "(*this)")
		} else {
			callArgs = append(callArgs, "this->GetHandle().GetRaw()")
		}
	}
	for i, p := range b.params {
		ct := ctx.CppType(p.typ)
		pt := ct.AsParameterType()
		if b.generic != nil && p.declared != nil && p.declared.Shape == symbols.ShapeTypeParameter {
			pt = ct.Plain()
		}
		nativeParams[i] = pt.Declaration() + " " + names[i]
		callArgs = append(callArgs, ct.ConversionToInterop(names[i]))
		refs = append(refs, e.refs(p.typ)...)
	}
	refs = append(refs, e.refs(result)...)
	invoke := name + "(" + strings.Join(callArgs, ", ") + ")"
	paramList := strings.Join(nativeParams, ", ")

	qualifier := ""
	if !b.static {
		qualifier = " const"
	}
	var decl, def string
	switch {
	case b.ctor && e.kind != interop.KindBlittableStruct:
		decl = b.member + "(" + paramList + ");"
		def = e.scope + "::" + b.member + "(" + paramList + ")\n    : _handle(" + invoke + ") {\n}"
	default:
		ret := ctx.CppType(result).AsReturnType().Declaration()
		var stmt string
		switch conv := ctx.CppType(result).ConversionFromInterop("result"); {
		case returnsVoid:
			stmt = "    " + invoke + ";"
		case conv == "result":
			stmt = "    return " + invoke + ";"
		default:
			stmt = "    auto result = " + invoke + ";\n    return " + conv + ";"
		}
		static := ""
		if b.static {
			static = "static "
		}
		if b.generic == nil {
			decl = static + ret + " " + b.member + "(" + paramList + ")" + qualifier + ";"
			def = ret + " " + e.scope + "::" + b.member + "(" + paramList + ")" + qualifier + " {\n" + stmt + "\n}"
			break
		}
		if b.generic.declare {
			e.declareTemplate(b, static, qualifier)
		}
		targs := make([]string, len(b.generic.args))
		for i, a := range b.generic.args {
			targs[i] = a.Declaration()
		}
		specialized := e.scope + "::" + b.member + "<" + strings.Join(targs, ", ") + ">(" + paramList + ")" + qualifier
		e.result.Declaration.Add(meta.CppDeclarationElement{
			Content:          "template <>\n" + ret + " " + specialized + ";",
			IsNamespaceScope: true,
			TypeRefs:         meta.TypeRefs{Declarations: refs},
		})
		def = "template <>\n" + ret + " " + specialized + " {\n" + stmt + "\n}"
		decl = ""
	}
	if decl != "" {
		e.result.Declaration.Add(meta.CppDeclarationElement{
			Content:  decl,
			TypeRefs: meta.TypeRefs{Declarations: refs},
		})
	}
	e.result.Definition.Add(meta.CppDefinitionElement{
		Content:  def,
		TypeRefs: meta.TypeRefs{Definitions: refs},
	})
}

// declareTemplate declares the member template of a generic method in
// terms of its own type parameters.
func (e *typeEmitter) declareTemplate(b binding, static, qualifier string) {
	def := b.generic.def
	typenames := make([]string, len(def.TypeParameters))
	for i, tp := range def.TypeParameters {
		typenames[i] = "typename " + tp.Name
	}
	raw := make([]string, len(def.Parameters))
	for i, p := range def.Parameters {
		raw[i] = p.Name
	}
	names := common.ParameterNames(raw, "thiz", "result")
	params := make([]string, len(def.Parameters))
	var refs []interop.CppType
	for i, p := range def.Parameters {
		params[i] = e.ctx.CppType(p.Type).AsParameterType().Declaration() + " " + names[i]
		refs = append(refs, e.refs(p.Type)...)
	}
	ret := interop.Void
	if !def.ReturnsVoid() {
		ret = e.ctx.CppType(def.ReturnType)
		refs = append(refs, e.refs(def.ReturnType)...)
	}
	e.result.Declaration.Add(meta.CppDeclarationElement{
		Content: "template <" + strings.Join(typenames, ", ") + ">\n" +
			static + ret.AsReturnType().Declaration() + " " + b.member + "(" + strings.Join(params, ", ") + ")" + qualifier + ";",
		TypeRefs: meta.TypeRefs{Declarations: refs},
	})
}

// refs lists the native types naming t pulls in, including the handle
// class for wrappers.
func (e *typeEmitter) refs(t *symbols.Type) []interop.CppType {
	if t == nil {
		return nil
	}
	ct := e.ctx.CppType(t)
	out := ct.Referenced()
	if ct.Kind.IsWrapper() {
		out = append(out, e.ctx.Interop.HandleType())
	}
	return out
}
