package emit

import (
	"fmt"
	"strings"

	"github.com/oxidize/oxidize/internal/codegen/interop"
	"github.com/oxidize/oxidize/internal/codegen/meta"
)

const friendDeclaration = "friend void ::initializeOxidize(void** functionPointers, int32_t count);"

// initializeHeader declares initializeOxidize.
const initializeHeader = "initializeOxidize.h"

// interopParam is one parameter of a function pointer signature.
type interopParam struct {
	name string
	cpp  interop.CppType
	cs   string
}

// slot is one entry of the function pointer table: the native field and
// the managed trampoline that fills it.
type slot struct {
	name     string
	key      string
	ret      interop.CppType
	csReturn string
	params   []interopParam
	csBody   []string
}

// addSlot declares and defines the native function pointer field and
// appends the paired init entries. Native and managed entries are always
// appended together, so both tables have the same length and order. It
// returns the field name.
func (e *typeEmitter) addSlot(s slot) string {
	name := e.names.Unique(s.name, s.key)
	params := make([]interop.CppType, len(s.params))
	for i, p := range s.params {
		params[i] = p.cpp
	}
	var refs []interop.CppType
	refs = append(refs, s.ret.Referenced()...)
	for _, p := range params {
		refs = append(refs, p.Referenced()...)
	}

	e.friend()
	e.result.Declaration.Add(meta.CppDeclarationElement{
		Content:   "static " + interop.FunctionPointer(name, s.ret, params) + ";",
		IsPrivate: true,
		TypeRefs:  meta.TypeRefs{Declarations: refs},
	})
	e.result.Definition.Add(meta.CppDefinitionElement{
		Content:  interop.FunctionPointer(e.scope+"::"+name, s.ret, params) + " = nullptr;",
		TypeRefs: meta.TypeRefs{Definitions: refs},
	})
	e.result.CppInit = append(e.result.CppInit, meta.CppInitEntry{
		FieldName:           e.self.QualifiedName() + "::" + name,
		FunctionPointerType: interop.FunctionPointerType(s.ret, params),
		Header:              e.self.HeaderPath(),
	})
	e.result.CSharpInit = append(e.result.CSharpInit, trampoline(interop.Identifier(e.item.Key())+"_"+name, s))
	e.trace("Bound slot", "slot", name)
	return name
}

// friend lets initializeOxidize assign the private fields.
func (e *typeEmitter) friend() {
	for _, el := range e.result.Declaration.Elements {
		if el.Content == friendDeclaration {
			return
		}
	}
	e.result.Declaration.Add(meta.CppDeclarationElement{
		Content:   friendDeclaration,
		IsPrivate: true,
		TypeRefs: meta.TypeRefs{
			Declarations: []interop.CppType{interop.Int32},
			Includes:     []string{initializeHeader},
		},
	})
}

func trampoline(name string, s slot) meta.CSharpInitEntry {
	params := make([]string, len(s.params))
	for i, p := range s.params {
		params[i] = p.cs + " " + p.name
	}
	list := strings.Join(params, ", ")

	var b strings.Builder
	b.WriteString("        [System.Runtime.InteropServices.UnmanagedFunctionPointer(System.Runtime.InteropServices.CallingConvention.Cdecl)]\n")
	fmt.Fprintf(&b, "        private delegate %s %sType(%s);\n", s.csReturn, name, list)
	fmt.Fprintf(&b, "        private static readonly %sType %sDelegate = new %sType(%s);\n", name, name, name, name)
	fmt.Fprintf(&b, "        [MonoPInvokeCallback(typeof(%sType))]\n", name)
	fmt.Fprintf(&b, "        private static %s %s(%s)\n", s.csReturn, name, list)
	b.WriteString("        {\n")
	for _, line := range s.csBody {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString("            " + line + "\n")
	}
	b.WriteString("        }\n")
	return meta.CSharpInitEntry{Name: name, Content: b.String()}
}
