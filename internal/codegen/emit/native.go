package emit

import (
	"fmt"
	"strings"

	"github.com/oxidize/oxidize/internal/codegen/common"
	"github.com/oxidize/oxidize/internal/codegen/interop"
	"github.com/oxidize/oxidize/internal/codegen/meta"
	"github.com/oxidize/oxidize/internal/codegen/scanner"
	"github.com/oxidize/oxidize/internal/codegen/symbols"
)

// nativeImplementation wires a managed class whose partial methods are
// implemented by a native class. The managed side owns one instance of the
// implementation per object, created lazily and released on dispose or
// finalization. The native side exports extern "C" functions that forward
// each partial method to the implementation.
func (e *typeEmitter) nativeImplementation() {
	item := e.item
	t := item.Type
	ctx := e.ctx
	prefix := interop.Identifier(e.self.QualifiedName())
	impl := item.ImplementationClassName
	handle := ctx.Interop.HandleType()
	h := handle.QualifiedName()

	invoker := &meta.CppImplementationInvoker{
		Includes: []string{
			`"` + e.self.HeaderPath() + `"`,
			`"` + handle.HeaderPath() + `"`,
			`"` + exportHeader(ctx) + `"`,
		},
	}
	if item.ImplementationHeaderName != "" {
		invoker.Includes = append(invoker.Includes, `"`+item.ImplementationHeaderName+`"`)
	} else {
		e.result.Diagnose(scanner.SeverityWarning, scanner.CodeImplementationHeaderMissing,
			"no implementation header named for "+impl)
	}
	invoker.Functions = append(invoker.Functions,
		fmt.Sprintf("OXIDIZE_EXPORT void* %s_CreateImplementation(void* handle) {\n"+
			"    const %s wrapper{%s(handle)};\n"+
			"    return reinterpret_cast<void*>(new %s(wrapper));\n}",
			prefix, e.self.QualifiedName(), h, impl),
		fmt.Sprintf("OXIDIZE_EXPORT void %s_DestroyImplementation(void* pImpl) {\n"+
			"    auto pImplementation = reinterpret_cast<%s*>(pImpl);\n"+
			"    delete pImplementation;\n}",
			prefix, impl),
	)

	lib := ctx.Options.NativeLibraryName
	members := []string{
		"[System.NonSerialized]\nprivate System.IntPtr _implementation = System.IntPtr.Zero;",
		"[System.Runtime.InteropServices.DllImport(\"" + lib + "\", CallingConvention = System.Runtime.InteropServices.CallingConvention.Cdecl)]\n" +
			"private static extern System.IntPtr " + prefix + "_CreateImplementation(System.IntPtr handle);",
		"[System.Runtime.InteropServices.DllImport(\"" + lib + "\", CallingConvention = System.Runtime.InteropServices.CallingConvention.Cdecl)]\n" +
			"private static extern void " + prefix + "_DestroyImplementation(System.IntPtr implementation);",
		"public void CreateImplementation()\n{\n" +
			"    Reinterop.ReinteropInitializer.Initialize();\n" +
			"    System.Diagnostics.Debug.Assert(_implementation == System.IntPtr.Zero, \"Implementation is already created. Be sure to call CreateImplementation only once.\");\n" +
			"    _implementation = " + prefix + "_CreateImplementation(ObjectHandleUtility.CreateHandle(this));\n}",
		"public void Dispose()\n{\n    Dispose(true);\n    System.GC.SuppressFinalize(this);\n}",
		"protected virtual void Dispose(bool disposing)\n{\n" +
			"    if (_implementation != System.IntPtr.Zero)\n    {\n" +
			"        " + prefix + "_DestroyImplementation(_implementation);\n" +
			"        _implementation = System.IntPtr.Zero;\n    }\n}",
		"~" + t.Name + "()\n{\n    Dispose(false);\n}",
	}

	names := interop.NewNameRegistry()
	for _, m := range item.SortedMethodsImplementedInCpp() {
		if reason := unsupportedParameters(m); reason != "" {
			e.skip(m.Key(), reason)
			continue
		}
		fn := prefix + "_" + names.Unique(interop.MethodFieldName(m), m.Key())
		invoker.Functions = append(invoker.Functions, e.invokerFunction(fn, m))
		members = append(members, e.partialMethod(fn, m)...)
		e.trace("Forwarded partial method", "method", m.Key())
	}

	e.result.CppImplementationInvoker = invoker
	e.result.CSharpPartialMethodDefinitions = &meta.CSharpPartialMethodDefinitions{
		Namespace: t.Namespace,
		TypeName:  t.Name,
		Members:   members,
	}
}

// exportHeader is the header defining OXIDIZE_EXPORT.
func exportHeader(ctx *meta.Context) string {
	parts := ctx.Interop.Namespaces(symbols.RuntimeNamespace)
	return strings.Join(append(parts, "Export.h"), "/")
}

func partialParamNames(m *symbols.Method) []string {
	raw := make([]string, len(m.Parameters))
	for i, p := range m.Parameters {
		raw[i] = p.Name
	}
	return common.ParameterNames(raw, "handle", "pImpl", "pImplementation", "wrapper", "result")
}

// invokerFunction is the exported native function that calls one partial
// method on the implementation.
func (e *typeEmitter) invokerFunction(fn string, m *symbols.Method) string {
	ctx := e.ctx
	names := partialParamNames(m)
	var params, args []string
	if !m.IsStatic {
		params = append(params, "void* handle", "void* pImpl")
	}
	for i, p := range m.Parameters {
		ct := ctx.CppType(p.Type)
		params = append(params, ct.AsInteropType().Declaration()+" "+names[i])
		args = append(args, ct.ConversionFromInterop(names[i]))
	}
	ret := ctx.CppType(nil)
	if !m.ReturnsVoid() {
		ret = ctx.CppType(m.ReturnType)
	}

	var body []string
	call := e.item.ImplementationClassName + "::" + m.Name + "(" + strings.Join(args, ", ") + ")"
	if !m.IsStatic {
		body = append(body,
			"const "+e.self.QualifiedName()+" wrapper{"+ctx.Interop.HandleType().QualifiedName()+"(handle)};",
			"auto pImplementation = reinterpret_cast<"+e.item.ImplementationClassName+"*>(pImpl);")
		call = "pImplementation->" + m.Name + "(" + strings.Join(append([]string{"wrapper"}, args...), ", ") + ")"
	}
	if ret.IsVoid() {
		body = append(body, call+";")
	} else {
		body = append(body,
			"auto result = "+call+";",
			"return "+ret.ConversionToInteropTransferringOwnership("result")+";")
	}
	return "OXIDIZE_EXPORT " + ret.AsInteropType().Declaration() + " " + fn + "(" + strings.Join(params, ", ") + ") {\n    " +
		strings.Join(body, "\n    ") + "\n}"
}

// partialMethod returns the DllImport and the managed partial method body
// that forwards to it.
func (e *typeEmitter) partialMethod(fn string, m *symbols.Method) []string {
	ic := e.ctx.Interop
	names := partialParamNames(m)
	var importParams, callArgs, declParams []string
	if !m.IsStatic {
		importParams = append(importParams, "System.IntPtr handle", "System.IntPtr pImpl")
		callArgs = append(callArgs, "ObjectHandleUtility.CreateHandle(this)", "_implementation")
	}
	for i, p := range m.Parameters {
		importParams = append(importParams, ic.CSharpInteropType(p.Type)+" "+names[i])
		callArgs = append(callArgs, ic.CSharpConversionToInterop(p.Type, names[i]))
		declParams = append(declParams, interop.CSharpName(p.Type)+" "+names[i])
	}
	var ret *symbols.Type
	if !m.ReturnsVoid() {
		ret = m.ReturnType
	}

	dllImport := "[System.Runtime.InteropServices.DllImport(\"" + e.ctx.Options.NativeLibraryName +
		"\", CallingConvention = System.Runtime.InteropServices.CallingConvention.Cdecl)]\n" +
		"private static extern " + ic.CSharpInteropType(ret) + " " + fn + "(" + strings.Join(importParams, ", ") + ");"

	modifiers := ""
	if m.Accessibility != "" && m.Accessibility != symbols.Private {
		modifiers = string(m.Accessibility) + " "
	}
	if m.IsStatic {
		modifiers += "static "
	}
	// Static partials can be the first call into native code.
	body := []string{"Reinterop.ReinteropInitializer.Initialize();"}
	if !m.IsStatic {
		body = append(body, "System.Diagnostics.Debug.Assert(_implementation != System.IntPtr.Zero, \"Implementation is not created. Be sure to call CreateImplementation in the constructor.\");")
	}
	call := fn + "(" + strings.Join(callArgs, ", ") + ")"
	if ret == nil {
		body = append(body, call+";")
	} else {
		body = append(body,
			"var result = "+call+";",
			"return "+ic.CSharpConversionFromInteropTakingOwnership(ret, "result")+";")
	}
	method := modifiers + "partial " + interop.CSharpName(ret) + " " + m.Name + "(" + strings.Join(declParams, ", ") + ")\n{\n    " +
		strings.Join(body, "\n    ") + "\n}"
	return []string{dllImport, method}
}
