package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oxidize/oxidize/internal/codegen/interop"
	"github.com/oxidize/oxidize/internal/codegen/meta"
	"github.com/oxidize/oxidize/internal/codegen/scanner"
	"github.com/oxidize/oxidize/internal/codegen/symbols"
)

// handleManagement gives a wrapper its handle: construction from a handle
// and from nullptr, comparison against nullptr and access to the handle.
// Copy and move come from the handle member.
func (e *typeEmitter) handleManagement() {
	handle := e.ctx.Interop.HandleType()
	h := handle.QualifiedName()
	name := e.self.Name
	nullRefs := meta.TypeRefs{Includes: []string{"<cstddef>"}}
	handleDecl := meta.TypeRefs{Declarations: []interop.CppType{handle}}
	handleDef := meta.TypeRefs{Definitions: []interop.CppType{handle}, Includes: []string{"<utility>"}}

	decls := []meta.CppDeclarationElement{
		{Content: "explicit " + name + "(" + h + "&& handle) noexcept;", TypeRefs: handleDecl},
		{Content: name + "(std::nullptr_t) noexcept;", TypeRefs: nullRefs},
		{Content: "bool operator==(std::nullptr_t) const noexcept;", TypeRefs: nullRefs},
		{Content: "bool operator!=(std::nullptr_t) const noexcept;", TypeRefs: nullRefs},
		{Content: "const " + h + "& GetHandle() const;", TypeRefs: handleDecl},
		{Content: h + "& GetHandle();", TypeRefs: handleDecl},
		{Content: h + " _handle;", IsPrivate: true, TypeRefs: meta.TypeRefs{Definitions: []interop.CppType{handle}}},
	}
	for _, d := range decls {
		e.result.Declaration.Add(d)
	}

	s := e.scope
	defs := []string{
		s + "::" + name + "(" + h + "&& handle) noexcept\n    : _handle(std::move(handle)) {\n}",
		s + "::" + name + "(std::nullptr_t) noexcept\n    : _handle(nullptr) {\n}",
		"bool " + s + "::operator==(std::nullptr_t) const noexcept {\n    return this->_handle.GetRaw() == nullptr;\n}",
		"bool " + s + "::operator!=(std::nullptr_t) const noexcept {\n    return this->_handle.GetRaw() != nullptr;\n}",
		"const " + h + "& " + s + "::GetHandle() const {\n    return this->_handle;\n}",
		h + "& " + s + "::GetHandle() {\n    return this->_handle;\n}",
	}
	for _, d := range defs {
		e.result.Definition.Add(meta.CppDefinitionElement{Content: d, TypeRefs: handleDef})
	}
	e.trace("Emitted handle management")
}

// casts emits a conversion operator to every generated base class and
// interface. The target wraps a copy of the same handle.
func (e *typeEmitter) casts() {
	var targets []*scanner.TypeToGenerate
	for b := e.item.BaseClass; b != nil; b = b.BaseClass {
		targets = append(targets, b)
	}
	targets = append(targets, e.item.Interfaces...)

	h := e.ctx.Interop.HandleType()
	for _, target := range targets {
		ct := e.ctx.CppType(target.Type)
		to := ct.Declaration()
		e.result.Declaration.Add(meta.CppDeclarationElement{
			Content:  "operator " + to + "() const;",
			TypeRefs: meta.TypeRefs{Declarations: ct.Referenced()},
		})
		e.result.Definition.Add(meta.CppDefinitionElement{
			Content: e.scope + "::operator " + to + "() const {\n" +
				"    return " + to + "(" + h.QualifiedName() + "(this->_handle));\n}",
			TypeRefs: meta.TypeRefs{Definitions: append(ct.Referenced(), h)},
		})
		e.trace("Emitted cast", "to", target.Key())
	}
}

// fields lays out a blittable struct: every instance field in declaration
// order with its accessibility. Class wrappers never expose fields.
func (e *typeEmitter) fields() {
	var fields []*symbols.Field
	for _, f := range e.item.Type.Fields {
		if !f.IsStatic {
			fields = append(fields, f)
		}
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Order < fields[j].Order })

	for _, f := range fields {
		e.result.Declaration.Add(meta.CppDeclarationElement{
			Content:   e.ctx.CppType(f.Type).Declaration() + " " + f.Name + ";",
			IsLayout:  true,
			IsPrivate: f.Accessibility != symbols.Public && f.Accessibility != "",
			TypeRefs:  meta.TypeRefs{Definitions: e.ctx.CppType(f.Type).Referenced()},
		})
	}
}

// enum declares a scoped enum with the managed underlying type.
func (e *typeEmitter) enum() {
	t := e.item.Type
	lines := make([]string, len(t.EnumValues))
	for i, v := range t.EnumValues {
		lines[i] = fmt.Sprintf("    %s = %d", v.Name, v.Value)
	}
	underlying := e.self.AsInteropType()
	e.result.Declaration.Add(meta.CppDeclarationElement{
		Content:          "enum class " + e.self.Name + " : " + underlying.Declaration() + " {\n" + strings.Join(lines, ",\n") + "\n};",
		IsNamespaceScope: true,
		TypeRefs:         meta.TypeRefs{Declarations: []interop.CppType{underlying}},
	})
}
