package symbols_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxidize/oxidize/internal/codegen/symbols"
	modeltest "github.com/oxidize/oxidize/internal/testing"
)

func TestParseTypeRef(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "simple", input: "Demo.Widget", expected: "Demo.Widget"},
		{name: "alias", input: "int", expected: "System.Int32"},
		{name: "generic", input: "Demo.Box<int>", expected: "Demo.Box<System.Int32>"},
		{name: "nested generic", input: "Demo.Pair<Demo.Box<string>, bool>", expected: "Demo.Pair<Demo.Box<System.String>, System.Boolean>"},
		{name: "spaces", input: "  Demo.Box< int >", expected: "Demo.Box<System.Int32>"},
		{name: "unterminated", input: "Demo.Box<int", wantErr: true},
		{name: "trailing garbage", input: "Demo.Box<int>>", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ref, err := symbols.ParseTypeRef(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ref.String())
		})
	}
}

func TestParseMemberRef(t *testing.T) {
	ref, err := symbols.ParseMemberRef("Demo.Registry.Get<Demo.Box<int>>(int, string)", false)
	require.NoError(t, err)
	assert.Equal(t, "Demo.Registry", ref.Type.String())
	assert.Equal(t, "Get", ref.Member)
	require.Len(t, ref.TypeArgs, 1)
	assert.Equal(t, "Demo.Box<System.Int32>", ref.TypeArgs[0].String())
	assert.True(t, ref.HasArgs)
	require.Len(t, ref.Params, 2)
	assert.Equal(t, "System.String", ref.Params[1].String())

	ref, err = symbols.ParseMemberRef("Demo.Box<int>.Value", false)
	require.NoError(t, err)
	assert.Equal(t, "Demo.Box<System.Int32>", ref.Type.String())
	assert.Equal(t, "Value", ref.Member)
	assert.False(t, ref.HasArgs)

	ref, err = symbols.ParseMemberRef("Demo.Widget()", true)
	require.NoError(t, err)
	assert.Equal(t, ".ctor", ref.Member)
	assert.True(t, ref.HasArgs)
	assert.Empty(t, ref.Params)

	_, err = symbols.ParseMemberRef("Widget", false)
	assert.Error(t, err)
}

func TestLoadDemoModel(t *testing.T) {
	c := modeltest.LoadModel(t, "demo.yaml")

	circle := modeltest.Type(t, c, "Demo.Circle")
	assert.Equal(t, symbols.ShapeClass, circle.Shape)
	require.NotNil(t, circle.BaseType)
	assert.Equal(t, "Demo.Ellipse", circle.BaseType.FullName())
	assert.True(t, circle.DerivesFrom(symbols.SpecialObject))
	require.Len(t, circle.AllInterfaces(), 1)
	assert.Equal(t, "Demo.IShape", circle.AllInterfaces()[0].FullName())

	require.Len(t, circle.Properties, 1)
	radius := circle.Properties[0]
	require.NotNil(t, radius.Getter)
	require.NotNil(t, radius.Setter)
	assert.Equal(t, "get_Radius", radius.Getter.Name)
	assert.Equal(t, symbols.SpecialDouble, radius.Getter.ReturnType.Special)

	mode := modeltest.Type(t, c, "Demo.Mode")
	assert.Equal(t, symbols.SpecialByte, mode.EnumUnderlying.Special)
	assert.True(t, mode.DerivesFrom(symbols.SpecialEnum))
	assert.Len(t, mode.EnumValues, 3)

	cb := modeltest.Type(t, c, "Demo.Callback")
	require.NotNil(t, cb.Invoke)
	assert.Equal(t, "Invoke", cb.Invoke.Name)
	assert.True(t, cb.Invoke.ReturnsVoid())

	native := modeltest.Type(t, c, "Demo.NativeThing")
	require.Len(t, native.Methods, 3)
	assert.True(t, native.Methods[0].IsPartial)
	assert.Equal(t, symbols.Private, native.Methods[0].Accessibility)
	assert.False(t, native.Methods[2].IsPartial)
	assert.Equal(t, symbols.Public, native.Methods[2].Accessibility)

	foo := modeltest.LoadModel(t, "foo.yaml")
	bar := modeltest.Type(t, foo, "Foo").Properties[0]
	assert.NotNil(t, bar.Getter)
	assert.Nil(t, bar.Setter)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected error
	}{
		{
			name: "duplicate type",
			src: `
types:
  - name: Demo.A
  - name: Demo.A
`,
			expected: symbols.ErrDuplicateType,
		},
		{
			name: "unknown kind",
			src: `
types:
  - name: Demo.A
    kind: record
`,
			expected: symbols.ErrUnknownShape,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := symbols.DecodeDocument([]byte(tc.src), "yaml")
			require.NoError(t, err)
			_, err = symbols.Load(doc)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestDecodeDocumentFormats(t *testing.T) {
	tests := []struct {
		format string
		src    string
	}{
		{format: "json", src: `{"types":[{"name":"Demo.A","kind":"struct","fields":[{"name":"X","type":"int"}]}]}`},
		{format: "toml", src: "[[types]]\nname = \"Demo.A\"\nkind = \"struct\"\n\n[[types.fields]]\nname = \"X\"\ntype = \"int\"\n"},
		{format: "yaml", src: "types:\n  - name: Demo.A\n    kind: struct\n    fields:\n      - {name: X, type: int}\n"},
	}
	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			doc, err := symbols.DecodeDocument([]byte(tc.src), tc.format)
			require.NoError(t, err)
			c, err := symbols.Load(doc)
			require.NoError(t, err)
			a := modeltest.Type(t, c, "Demo.A")
			require.Len(t, a.Fields, 1)
			assert.Equal(t, symbols.SpecialInt32, a.Fields[0].Type.Special)
		})
	}

	_, err := symbols.DecodeDocument([]byte("x"), "xml")
	assert.Error(t, err)
}

const genericSource = `
types:
  - name: Demo.Holder
    fields:
      - name: Boxed
        type: Demo.Box<int>
  - name: Demo.Box
    typeParams: [T]
    properties:
      - name: Value
        type: T
    methods:
      - name: Map
        typeParams: [U]
        returns: Demo.Box<U>
        params:
          - name: value
            type: T
`

func TestConstructedGenerics(t *testing.T) {
	c := modeltest.LoadSource(t, genericSource)

	// Constructed while the definition was still empty; Load refills it.
	holder := modeltest.Type(t, c, "Demo.Holder")
	boxed := holder.Fields[0].Type
	require.NotNil(t, boxed)
	require.Len(t, boxed.Properties, 1)
	assert.Equal(t, symbols.SpecialInt32, boxed.Properties[0].Type.Special)
	assert.Equal(t, "Demo.Box<System.Int32>", boxed.Key())
	assert.False(t, boxed.IsOpenGeneric())

	again := c.ResolveString("Demo.Box<int>", nil)
	assert.Same(t, boxed, again)

	def := c.Lookup("Demo.Box", 1)
	require.NotNil(t, def)
	assert.True(t, def.IsOpenGeneric())
	assert.Equal(t, "Demo.Box<T>", def.String())

	m := c.ResolveMethod("Demo.Box<int>.Map<string>(int)")
	require.NotNil(t, m)
	assert.Equal(t, "Demo.Box<System.String>", m.ReturnType.Key())
	assert.Same(t, m, c.ResolveMethod("Demo.Box<int>.Map<string>(int)"))
	assert.NotSame(t, m, c.ResolveMethod("Demo.Box<int>.Map<bool>(int)"))
}

const overloadSource = `
types:
  - name: Demo.Calc
    constructors:
      - {}
      - params: [{name: seed, type: int}]
    methods:
      - name: Add
        returns: int
        params: [{name: a, type: int}]
      - name: Add
        returns: double
        params: [{name: a, type: double}]
      - name: Clear
    fields:
      - name: Total
        type: int
    properties:
      - name: Total
        type: long
  - name: Demo.SciCalc
    base: Demo.Calc
`

func TestResolveMembers(t *testing.T) {
	c := modeltest.LoadSource(t, overloadSource)

	add := c.ResolveMethod("Demo.Calc.Add(double)")
	require.NotNil(t, add)
	assert.Equal(t, symbols.SpecialDouble, add.ReturnType.Special)

	assert.Nil(t, c.ResolveMethod("Demo.Calc.Add"), "ambiguous without parameter list")
	assert.Nil(t, c.ResolveMethod("Demo.Calc.Add(string)"))
	assert.Nil(t, c.ResolveMethod("Demo.Nope.Add(int)"))
	assert.NotNil(t, c.ResolveMethod("Demo.Calc.Clear"))
	assert.NotNil(t, c.ResolveMethod("Demo.SciCalc.Clear()"), "inherited")

	ctor := c.ResolveConstructor("Demo.Calc(int)")
	require.NotNil(t, ctor)
	assert.Equal(t, symbols.MethodConstructor, ctor.Kind)
	assert.Nil(t, c.ResolveConstructor("Demo.Calc"), "ambiguous")
	assert.NotNil(t, c.ResolveConstructor("Demo.Calc()"))

	member := c.ResolveMember("Demo.SciCalc.Total")
	require.NotNil(t, member)
	prop, ok := member.(*symbols.Property)
	require.True(t, ok, "properties win over fields")
	assert.Equal(t, "Demo.Calc.Total", prop.Key())

	assert.Nil(t, c.ResolveMember("Demo.Calc.Missing"))
}

func TestExpressionBodies(t *testing.T) {
	c := modeltest.LoadModel(t, "foo.yaml")
	exposer := modeltest.Type(t, c, "Example.FooExposer")
	body := exposer.Methods[0].Body
	require.Len(t, body, 2)

	local, ok := body[0].(*symbols.LocalDeclaration)
	require.True(t, ok)
	assert.Equal(t, "Foo", local.Type.FullName())

	access, ok := body[1].(*symbols.MemberAccess)
	require.True(t, ok)
	prop, ok := access.Member.(*symbols.Property)
	require.True(t, ok)
	assert.Equal(t, "Foo.Bar", prop.Key())
	target, ok := access.Target.(*symbols.Identifier)
	require.True(t, ok)
	assert.Nil(t, target.Symbol)
}

func TestDiscoverSites(t *testing.T) {
	c := modeltest.LoadModel(t, "demo.yaml")
	sites := symbols.DiscoverSites(c)
	require.Len(t, sites, 4)

	runtime := sites[0]
	assert.Equal(t, symbols.SiteExpose, runtime.Kind)
	assert.Same(t, c.ObjectHandleUtility(), runtime.Type)
	assert.Len(t, runtime.Method.Body, 2)

	assert.Equal(t, "Demo.Exposer", sites[1].Type.FullName())
	assert.Equal(t, symbols.SiteExpose, sites[1].Kind)

	assert.Equal(t, symbols.SiteNativeImplementation, sites[2].Kind)
	assert.Equal(t, "Demo.NativeThing", sites[2].Type.FullName())
	assert.Equal(t, "demo::NativeThingImpl", sites[2].ImplementationClass)
	assert.Equal(t, "NativeThingImpl.h", sites[2].ImplementationHeader)

	assert.Equal(t, "Demo.WidgetExposer", sites[3].Type.FullName())

	again := symbols.DiscoverSites(c)
	for i := range sites {
		assert.Equal(t, sites[i].String(), again[i].String())
	}
}
