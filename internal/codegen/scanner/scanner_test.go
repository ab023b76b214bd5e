package scanner_test

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxidize/oxidize/internal/codegen/scanner"
	"github.com/oxidize/oxidize/internal/codegen/symbols"
	modeltest "github.com/oxidize/oxidize/internal/testing"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func collectAll(t *testing.T, c *symbols.Compilation) []scanner.GenerationMap {
	t.Helper()
	maps, err := scanner.CollectAll(context.Background(), symbols.DiscoverSites(c), discard())
	require.NoError(t, err)
	return maps
}

func TestCollectPropertyRead(t *testing.T) {
	c := modeltest.LoadModel(t, "foo.yaml")
	sites := symbols.DiscoverSites(c)
	require.Len(t, sites, 2)

	m := scanner.Collect(sites[1], discard())
	assert.Equal(t, []string{"Foo"}, m.Keys())
	foo := m["Foo"]
	propKeys := make([]string, 0, len(foo.Properties))
	for k := range foo.Properties {
		propKeys = append(propKeys, k)
	}
	slices.Sort(propKeys)
	assert.Equal(t, []string{"Foo.Bar"}, propKeys)
	assert.Empty(t, foo.Methods)
	assert.Empty(t, foo.Constructors)
}

func TestCollectExposeSite(t *testing.T) {
	c := modeltest.LoadModel(t, "demo.yaml")
	sites := symbols.DiscoverSites(c)
	m := scanner.Collect(sites[1], discard())

	expected := []string{
		"Demo.Callback",
		"Demo.Circle",
		"Demo.Emitter",
		"Demo.Entity",
		"Demo.Flags",
		"Demo.IShape",
		"Demo.Label",
		"Demo.Mode",
		"Demo.Registry",
		"Demo.Shape",
		"Demo.Tagged",
		"Demo.Vec3",
		"System.String",
	}
	assert.Equal(t, expected, m.Keys())
	assert.NotContains(t, m, "Demo.Ellipse", "never referenced")
	assert.NotContains(t, m, "System.Int32", "primitives are not generated")
	assert.NotContains(t, m, "System.Double")

	circle := m["Demo.Circle"]
	assert.Len(t, circle.Constructors, 1)
	assert.Len(t, circle.Properties, 1, "getter and setter reach the same property")

	registry := m["Demo.Registry"]
	assert.Len(t, registry.Methods, 2, "open generic call is skipped")
	for _, method := range registry.SortedMethods() {
		assert.False(t, method.IsGenericDefinition())
	}

	vec := m["Demo.Vec3"]
	assert.Len(t, vec.Constructors, 1)
	assert.Len(t, vec.Methods, 1)
	fields := vec.OrderedFields()
	require.Len(t, fields, 3)
	assert.Equal(t, "X", fields[0].Name)
	assert.Equal(t, "Z", fields[2].Name)

	assert.Len(t, m["Demo.Emitter"].Events, 1)
	assert.Len(t, m["Demo.Callback"].Methods, 1, "delegate Invoke is bound")
	assert.Len(t, m["Demo.Entity"].Properties, 1)
}

func TestCollectNativeImplementation(t *testing.T) {
	c := modeltest.LoadModel(t, "demo.yaml")
	sites := symbols.DiscoverSites(c)
	m := scanner.Collect(sites[2], discard())

	native := m["Demo.NativeThing"]
	require.NotNil(t, native)
	assert.True(t, native.IsNativeImplemented())
	assert.Equal(t, "demo::NativeThingImpl", native.ImplementationClassName)
	assert.Equal(t, "NativeThingImpl.h", native.ImplementationHeaderName)
	require.Len(t, native.MethodsImplementedInCpp, 2)
	names := []string{}
	for _, method := range native.SortedMethodsImplementedInCpp() {
		names = append(names, method.Name)
	}
	assert.ElementsMatch(t, []string{"Compute", "Reset"}, names)
	assert.Empty(t, native.Methods)
}

func TestCollectRuntimeSite(t *testing.T) {
	c := modeltest.LoadModel(t, "foo.yaml")
	m := scanner.Collect(symbols.DiscoverSites(c)[0], discard())
	ohu := m["Reinterop.ObjectHandleUtility"]
	require.NotNil(t, ohu)
	assert.Len(t, ohu.Methods, 2)
	assert.Len(t, m, 1)
}

func TestCollectAllMatchesSequential(t *testing.T) {
	c := modeltest.LoadModel(t, "demo.yaml")
	sites := symbols.DiscoverSites(c)
	parallel := collectAll(t, c)
	require.Len(t, parallel, len(sites))
	for i, site := range sites {
		assert.Equal(t, scanner.Summarize(scanner.Collect(site, discard()), nil), scanner.Summarize(parallel[i], nil))
	}
}

func TestMergeIsOrderIndependent(t *testing.T) {
	c := modeltest.LoadModel(t, "demo.yaml")
	parts := collectAll(t, c)

	forward, diags := scanner.Merge(parts...)
	assert.Empty(t, diags)
	reversed := slices.Clone(parts)
	slices.Reverse(reversed)
	backward, diags := scanner.Merge(reversed...)
	assert.Empty(t, diags)
	rotated, _ := scanner.Merge(append(slices.Clone(parts[2:]), parts[:2]...)...)

	assert.Equal(t, scanner.Summarize(forward, nil), scanner.Summarize(backward, nil))
	assert.Equal(t, scanner.Summarize(forward, nil), scanner.Summarize(rotated, nil))

	// Merging is associative as well.
	left, _ := scanner.Merge(parts[0], parts[1])
	left, _ = scanner.Merge(left, parts[2], parts[3])
	right, _ := scanner.Merge(parts[2], parts[3])
	right, _ = scanner.Merge(parts[0], parts[1], right)
	assert.Equal(t, scanner.Summarize(left, nil), scanner.Summarize(right, nil))
	assert.Equal(t, scanner.Summarize(forward, nil), scanner.Summarize(left, nil))
}

func TestMergeUnionsMembers(t *testing.T) {
	c := modeltest.LoadModel(t, "demo.yaml")
	circle := modeltest.Type(t, c, "Demo.Circle")

	a := scanner.GenerationMap{"Demo.Circle": scanner.NewTypeToGenerate(circle)}
	a["Demo.Circle"].Properties[circle.Properties[0].Key()] = circle.Properties[0]
	b := scanner.GenerationMap{"Demo.Circle": scanner.NewTypeToGenerate(circle)}
	b["Demo.Circle"].Constructors[circle.Constructors[0].Key()] = circle.Constructors[0]
	b["Demo.Circle"].Properties[circle.Properties[0].Key()] = circle.Properties[0]

	merged, diags := scanner.Merge(a, b)
	assert.Empty(t, diags)
	assert.Len(t, merged["Demo.Circle"].Properties, 1)
	assert.Len(t, merged["Demo.Circle"].Constructors, 1)
	assert.Empty(t, a["Demo.Circle"].Constructors, "inputs are left alone")
}

func TestMergeConflictingImplementation(t *testing.T) {
	c := modeltest.LoadModel(t, "demo.yaml")
	native := modeltest.Type(t, c, "Demo.NativeThing")

	first := scanner.NewTypeToGenerate(native)
	first.ImplementationClassName = "demo::First"
	first.ImplementationHeaderName = "First.h"
	second := scanner.NewTypeToGenerate(native)
	second.ImplementationClassName = "demo::Second"
	second.ImplementationHeaderName = "First.h"
	empty := scanner.NewTypeToGenerate(native)

	merged, diags := scanner.Merge(
		scanner.GenerationMap{"Demo.NativeThing": empty},
		scanner.GenerationMap{"Demo.NativeThing": first},
		scanner.GenerationMap{"Demo.NativeThing": second},
	)
	assert.Equal(t, "demo::First", merged["Demo.NativeThing"].ImplementationClassName)
	assert.Equal(t, "First.h", merged["Demo.NativeThing"].ImplementationHeaderName)
	require.Len(t, diags, 1)
	assert.Equal(t, scanner.CodeImplementationClassConflict, diags[0].Code)
	assert.Equal(t, scanner.SeverityWarning, diags[0].Severity)
	assert.Equal(t, "Demo.NativeThing", diags[0].Subject)
	assert.Contains(t, diags[0].String(), "demo::Second")
}

func TestLinkClosure(t *testing.T) {
	c := modeltest.LoadModel(t, "demo.yaml")
	merged, _ := scanner.Merge(collectAll(t, c)...)
	scanner.Link(merged)

	for key, item := range merged {
		if item.BaseClass != nil {
			assert.Contains(t, merged, item.BaseClass.Key(), "base of %s", key)
			assert.Same(t, merged[item.BaseClass.Key()], item.BaseClass)
		}
		for _, i := range item.Interfaces {
			assert.Contains(t, merged, i.Key(), "interface of %s", key)
		}
	}

	circle := merged["Demo.Circle"]
	require.NotNil(t, circle.BaseClass)
	assert.Equal(t, "Demo.Shape", circle.BaseClass.Key(), "skips the ungenerated Demo.Ellipse")
	require.Len(t, circle.Interfaces, 1)
	assert.Equal(t, "Demo.IShape", circle.Interfaces[0].Key(), "inherited through Demo.Shape")

	shape := merged["Demo.Shape"]
	require.NotNil(t, shape.BaseClass)
	assert.Equal(t, "Demo.Entity", shape.BaseClass.Key())
	assert.Nil(t, merged["Demo.Entity"].BaseClass, "System.Object is not generated")

	summary := scanner.Summarize(merged, func(t *symbols.Type) string { return string(t.Shape) })
	for _, s := range summary {
		if s.Type == "Demo.Circle" {
			assert.Equal(t, "Demo.Shape", s.BaseClass)
			assert.Equal(t, "class", s.Kind)
		}
	}
}
