package testing

import (
	"embed"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxidize/oxidize/internal/codegen/symbols"
)

//go:embed models/*.yaml
var models embed.FS

// LoadModel loads one of the bundled program models ("foo.yaml", "demo.yaml").
func LoadModel(t testing.TB, name string) *symbols.Compilation {
	t.Helper()
	data, err := models.ReadFile("models/" + name)
	require.NoError(t, err)
	doc, err := symbols.DecodeDocument(data, "yaml")
	require.NoError(t, err)
	c, err := symbols.Load(doc)
	require.NoError(t, err)
	return c
}

// LoadSource loads a program model given inline as YAML.
func LoadSource(t testing.TB, src string) *symbols.Compilation {
	t.Helper()
	doc, err := symbols.DecodeDocument([]byte(src), "yaml")
	require.NoError(t, err)
	c, err := symbols.Load(doc)
	require.NoError(t, err)
	return c
}

// Type looks up a non-generic type by full name and fails the test if it
// is missing.
func Type(t testing.TB, c *symbols.Compilation, fullName string) *symbols.Type {
	t.Helper()
	typ := c.Lookup(fullName, 0)
	require.NotNil(t, typ, "type %s", fullName)
	return typ
}
