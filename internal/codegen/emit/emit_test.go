package emit_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxidize/oxidize/internal/codegen/emit"
	"github.com/oxidize/oxidize/internal/codegen/meta"
	"github.com/oxidize/oxidize/internal/codegen/scanner"
	"github.com/oxidize/oxidize/internal/codegen/symbols"
	"github.com/oxidize/oxidize/internal/log"
	modeltest "github.com/oxidize/oxidize/internal/testing"
)

func newContext(t *testing.T, c *symbols.Compilation, opts meta.Options) *meta.Context {
	t.Helper()
	parts, err := scanner.CollectAll(context.Background(), symbols.DiscoverSites(c), log.Discard())
	require.NoError(t, err)
	merged, diags := scanner.Merge(parts...)
	require.Empty(t, diags)
	scanner.Link(merged)
	ctx := meta.NewContext(c, merged, opts, log.Discard())
	emit.RegisterBuiltins(ctx)
	return ctx
}

func generate(t *testing.T, ctx *meta.Context, key string) *meta.GeneratedResult {
	t.Helper()
	item, ok := ctx.Types[key]
	require.True(t, ok, "type %s not collected", key)
	return emit.GenerateType(ctx, item)
}

func declarations(r *meta.GeneratedResult) string {
	var parts []string
	for _, e := range r.Declaration.Elements {
		parts = append(parts, e.Content)
	}
	return strings.Join(parts, "\n")
}

func definitions(r *meta.GeneratedResult) string {
	var parts []string
	for _, e := range r.Definition.Elements {
		parts = append(parts, e.Content)
	}
	return strings.Join(parts, "\n")
}

func TestPropertyGetterEndToEnd(t *testing.T) {
	ctx := newContext(t, modeltest.LoadModel(t, "foo.yaml"), meta.Options{})
	r := generate(t, ctx, "Foo")

	assert.Contains(t, declarations(r), "int32_t Bar() const;")
	assert.Contains(t, definitions(r), "int32_t Foo::Bar() const {\n    return Property_get_Bar(this->GetHandle().GetRaw());\n}")
	assert.Contains(t, definitions(r), "int32_t (*Foo::Property_get_Bar)(void*) = nullptr;")

	require.Len(t, r.CppInit, 1)
	assert.Equal(t, "::DotNet::Foo::Property_get_Bar", r.CppInit[0].FieldName)
	assert.Equal(t, "int32_t (*)(void*)", r.CppInit[0].FunctionPointerType)
	assert.Equal(t, "DotNet/Foo.h", r.CppInit[0].Header)

	require.Len(t, r.CSharpInit, 1)
	assert.Contains(t, r.CSharpInit[0].Content, "return ((Foo)ObjectHandleUtility.GetObjectFromHandle(thiz)).Bar;")
	assert.Contains(t, r.CSharpInit[0].Content, "private static int "+r.CSharpInit[0].Name+"(System.IntPtr thiz)")
}

func TestBaseNamespaceOption(t *testing.T) {
	ctx := newContext(t, modeltest.LoadModel(t, "foo.yaml"), meta.Options{BaseNamespace: "Acme.Bindings"})
	r := generate(t, ctx, "Foo")

	require.Len(t, r.CppInit, 1)
	assert.Equal(t, "::Acme::Bindings::Foo::Property_get_Bar", r.CppInit[0].FieldName)
	assert.Equal(t, "Acme/Bindings/Foo.h", r.CppInit[0].Header)
}

func TestInitEntriesArePaired(t *testing.T) {
	ctx := newContext(t, modeltest.LoadModel(t, "demo.yaml"), meta.Options{})
	r := generate(t, ctx, "Demo.Widget")

	require.Len(t, r.CppInit, 8)
	require.Len(t, r.CSharpInit, 8)
	for i := range r.CppInit {
		field := r.CppInit[i].FieldName[strings.LastIndex(r.CppInit[i].FieldName, "::")+2:]
		assert.True(t, strings.HasSuffix(r.CSharpInit[i].Name, "_"+field),
			"entry %d: %s does not fill %s", i, r.CSharpInit[i].Name, field)
	}

	// Every slot is declared private and befriends the initializer once.
	decls := declarations(r)
	assert.Equal(t, 1, strings.Count(decls, "friend void ::initializeOxidize(void** functionPointers, int32_t count);"))
	for _, e := range r.Declaration.Elements {
		if strings.HasPrefix(e.Content, "static ") && strings.Contains(e.Content, "(*") {
			assert.True(t, e.IsPrivate, e.Content)
		}
	}
}

func TestAllResultsArePaired(t *testing.T) {
	ctx := newContext(t, modeltest.LoadModel(t, "demo.yaml"), meta.Options{})
	for _, r := range emit.GenerateAll(ctx) {
		assert.Len(t, r.CSharpInit, len(r.CppInit), r.Item.Key())
	}
}

func TestNullHandleSemantics(t *testing.T) {
	ctx := newContext(t, modeltest.LoadModel(t, "demo.yaml"), meta.Options{})
	r := generate(t, ctx, "Demo.Widget")

	decls := declarations(r)
	assert.Contains(t, decls, "explicit Widget(::DotNet::Reinterop::ObjectHandle&& handle) noexcept;")
	assert.Contains(t, decls, "Widget(std::nullptr_t) noexcept;")
	assert.Contains(t, decls, "bool operator==(std::nullptr_t) const noexcept;")
	assert.Contains(t, decls, "Widget(float scale);")

	defs := definitions(r)
	assert.Contains(t, defs, "return this->_handle.GetRaw() == nullptr;")
	assert.Contains(t, defs, "Widget::Widget(float scale)\n    : _handle(")
	assert.Contains(t, defs, "bool Widget::Resize(int32_t width, int32_t height) const {\n    auto result = ")
	assert.Contains(t, defs, "return !!result;")
}

func TestGenericMethodInstantiations(t *testing.T) {
	ctx := newContext(t, modeltest.LoadModel(t, "demo.yaml"), meta.Options{})
	r := generate(t, ctx, "Demo.Registry")

	require.Len(t, r.CppInit, 2)
	assert.NotEqual(t, r.CppInit[0].FieldName, r.CppInit[1].FieldName)
	assert.NotEqual(t, r.CSharpInit[0].Name, r.CSharpInit[1].Name)

	decls := declarations(r)
	assert.Equal(t, 1, strings.Count(decls, "template <typename T>\nstatic T Get(int32_t key);"))
	assert.Contains(t, decls, "template <>\nint32_t Registry::Get<int32_t>(int32_t key);")
	assert.Contains(t, decls, "template <>\n::DotNet::Demo::Circle Registry::Get<::DotNet::Demo::Circle>(int32_t key);")

	var specializations int
	for _, e := range r.Declaration.Elements {
		if strings.HasPrefix(e.Content, "template <>") {
			assert.True(t, e.IsNamespaceScope)
			specializations++
		}
	}
	assert.Equal(t, 2, specializations)

	var managed []string
	for _, e := range r.CSharpInit {
		managed = append(managed, e.Content)
	}
	assert.Contains(t, strings.Join(managed, "\n"), "Demo.Registry.Get<int>(key)")
	assert.Contains(t, strings.Join(managed, "\n"), "ObjectHandleUtility.CreateHandle(result)")
}

func TestCastsToGeneratedAncestors(t *testing.T) {
	ctx := newContext(t, modeltest.LoadModel(t, "demo.yaml"), meta.Options{})
	r := generate(t, ctx, "Demo.Circle")

	decls := declarations(r)
	assert.Contains(t, decls, "operator ::DotNet::Demo::Shape() const;")
	assert.Contains(t, decls, "operator ::DotNet::Demo::Entity() const;")
	assert.Contains(t, decls, "operator ::DotNet::Demo::IShape() const;")
	assert.NotContains(t, decls, "Ellipse")
	assert.Contains(t, definitions(r),
		"Circle::operator ::DotNet::Demo::Shape() const {\n    return ::DotNet::Demo::Shape(::DotNet::Reinterop::ObjectHandle(this->_handle));\n}")
}

func TestBlittableStruct(t *testing.T) {
	ctx := newContext(t, modeltest.LoadModel(t, "demo.yaml"), meta.Options{})
	r := generate(t, ctx, "Demo.Vec3")

	assert.Equal(t, "struct", r.Declaration.Keyword)
	var layout []string
	for _, e := range r.Declaration.Body() {
		if e.IsLayout {
			layout = append(layout, e.Content)
		}
	}
	assert.Equal(t, []string{"double X;", "double Y;", "double Z;"}, layout)

	decls := declarations(r)
	assert.Contains(t, decls, "static ::DotNet::Demo::Vec3 Construct(double x, double y, double z);")
	assert.Contains(t, decls, "double Length() const;")
	assert.NotContains(t, decls, "_handle")
	assert.Contains(t, definitions(r), "return Method_Length_")
	assert.Contains(t, definitions(r), "((*this));")
	for _, e := range r.CSharpInit {
		assert.NotContains(t, e.Content, "GetObjectFromHandle")
	}
}

func TestNonBlittableStructs(t *testing.T) {
	ctx := newContext(t, modeltest.LoadModel(t, "demo.yaml"), meta.Options{})
	for _, key := range []string{"Demo.Flags", "Demo.Label"} {
		r := generate(t, ctx, key)
		assert.Equal(t, "class", r.Declaration.Keyword, key)
		assert.Contains(t, declarations(r), "_handle;", key)
	}

	r := generate(t, ctx, "Demo.Tagged")
	assert.Equal(t, "struct", r.Declaration.Keyword)
}

func TestEnum(t *testing.T) {
	ctx := newContext(t, modeltest.LoadModel(t, "demo.yaml"), meta.Options{})
	r := generate(t, ctx, "Demo.Mode")

	assert.False(t, r.Declaration.HasBody)
	assert.Empty(t, r.CppInit)
	require.Len(t, r.Declaration.NamespaceScope(), 1)
	assert.Equal(t, "enum class Mode : uint8_t {\n    Off = 0,\n    On = 1,\n    Auto = 2\n};",
		r.Declaration.NamespaceScope()[0].Content)
}

func TestEvents(t *testing.T) {
	ctx := newContext(t, modeltest.LoadModel(t, "demo.yaml"), meta.Options{})
	r := generate(t, ctx, "Demo.Emitter")

	decls := declarations(r)
	assert.Contains(t, decls, "void add_Fired(const ::DotNet::Demo::Callback& value) const;")
	assert.Contains(t, decls, "void remove_Fired(const ::DotNet::Demo::Callback& value) const;")
	require.Len(t, r.CSharpInit, 2)
	assert.Contains(t, r.CSharpInit[0].Content, ".Fired += (Demo.Callback)ObjectHandleUtility.GetObjectFromHandle(value);")
	assert.Contains(t, r.CSharpInit[1].Content, ".Fired -= ")
}

func TestNativeImplementation(t *testing.T) {
	ctx := newContext(t, modeltest.LoadModel(t, "demo.yaml"), meta.Options{NativeLibraryName: "DemoNative"})
	r := generate(t, ctx, "Demo.NativeThing")

	require.NotNil(t, r.CppImplementationInvoker)
	require.NotNil(t, r.CSharpPartialMethodDefinitions)
	inv := r.CppImplementationInvoker
	assert.Contains(t, inv.Includes, `"NativeThingImpl.h"`)

	functions := strings.Join(inv.Functions, "\n")
	assert.Contains(t, functions, "OXIDIZE_EXPORT void* DotNet_Demo_NativeThing_CreateImplementation(void* handle)")
	assert.Contains(t, functions, "new demo::NativeThingImpl(wrapper)")
	assert.Contains(t, functions, "delete pImplementation;")
	assert.Contains(t, functions, "pImplementation->Compute(wrapper, x)")
	assert.Contains(t, functions, "demo::NativeThingImpl::Reset();")

	partial := r.CSharpPartialMethodDefinitions
	assert.Equal(t, "Demo", partial.Namespace)
	assert.Equal(t, "NativeThing", partial.TypeName)
	members := strings.Join(partial.Members, "\n")
	assert.Contains(t, members, `DllImport("DemoNative"`)
	assert.Contains(t, members, "Reinterop.ReinteropInitializer.Initialize();")
	assert.Contains(t, members, "~NativeThing()")
	assert.Contains(t, members, "partial int Compute(int x)")
	assert.Contains(t, members, "static partial void Reset()\n{\n    Reinterop.ReinteropInitializer.Initialize();\n    DotNet_Demo_NativeThing_Method_Reset_")
	assert.Contains(t, members, "partial int Compute(int x)\n{\n    Reinterop.ReinteropInitializer.Initialize();\n    System.Diagnostics.Debug.Assert(_implementation != System.IntPtr.Zero")
	assert.Contains(t, members, "ObjectHandleUtility.CreateHandle(this), _implementation, x")
	assert.NotContains(t, members, "Describe")
}

func TestStringGenerator(t *testing.T) {
	c := modeltest.LoadSource(t, `
types:
  - name: Text.Greeter
    kind: class
    methods:
      - name: Greet
        static: true
        returns: string
  - name: Text.Exposer
    kind: class
    attributes:
      - name: Reinterop
    methods:
      - name: ExposeToCPP
        access: private
        body:
          - call: Text.Greeter.Greet()
`)
	ctx := newContext(t, c, meta.Options{})
	r := generate(t, ctx, "System.String")

	decls := declarations(r)
	assert.Contains(t, decls, "String(const std::string& value);")
	assert.Contains(t, decls, "std::string ToStlString() const;")
	defs := definitions(r)
	assert.Contains(t, defs, ": _handle(CreateFromStlString(const_cast<char*>(value.data()), static_cast<int32_t>(value.size())))")
	assert.Contains(t, defs, "ToStlString(handle, nullptr, 0);")

	require.Len(t, r.CppInit, 2)
	require.Len(t, r.CSharpInit, 2)
	assert.Equal(t, "::DotNet::System::String::CreateFromStlString", r.CppInit[0].FieldName)
	assert.Equal(t, "void* (*)(void*, int32_t)", r.CppInit[0].FunctionPointerType)
	assert.Contains(t, r.CSharpInit[0].Content, "System.Text.Encoding.UTF8.GetString(bytes)")
	assert.Contains(t, r.CSharpInit[1].Content, "System.Text.Encoding.UTF8.GetBytes(")
	// The length query passes a null buffer, which must never reach Marshal.Copy.
	assert.Contains(t, r.CSharpInit[1].Content, "if (buffer != System.IntPtr.Zero && bytes.Length <= size)")

	greeter := generate(t, ctx, "Text.Greeter")
	assert.Contains(t, declarations(greeter), "static ::DotNet::System::String Greet();")
}

func TestSkippedMembersAreDiagnosed(t *testing.T) {
	c := modeltest.LoadSource(t, `
types:
  - name: Util.Parser
    kind: class
    methods:
      - name: TryParse
        static: true
        returns: bool
        params:
          - name: text
            type: int
          - name: value
            type: int
            ref: out
  - name: Util.Exposer
    kind: class
    attributes:
      - name: Reinterop
    methods:
      - name: ExposeToCPP
        access: private
        body:
          - call: Util.Parser.TryParse
`)
	ctx := newContext(t, c, meta.Options{})
	r := generate(t, ctx, "Util.Parser")

	assert.Empty(t, r.CppInit)
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, scanner.CodeMemberSkipped, r.Diagnostics[0].Code)
	assert.Equal(t, scanner.SeverityInfo, r.Diagnostics[0].Severity)
}
