package cmd_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	toml "github.com/pelletier/go-toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"github.com/oxidize/oxidize/internal/cmd"
)

func TestGenerateTemplate(t *testing.T) {
	data, format, err := cmd.Template("generate", "json")
	require.NoError(t, err)
	assert.Equal(t, "json", format)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "DotNet", m["baseNamespace"])
	assert.Equal(t, "OxidizeNative", m["nativeLibraryName"])
	assert.Equal(t, "./generated/include", m["headerDir"])
	assert.Equal(t, "all", m["lang"])
	assert.Equal(t, false, m["warningsAsErrors"])
	assert.Equal(t, []any{}, m["nonBlittableTypes"])
	assert.NotContains(t, m, "models")
}

func TestTemplateFormats(t *testing.T) {
	data, format, err := cmd.Template("scan", "yml")
	require.NoError(t, err)
	assert.Equal(t, "yaml", format)
	var y map[string]any
	require.NoError(t, yaml.Unmarshal(data, &y))
	assert.Equal(t, "yaml", y["format"])

	data, _, err = cmd.Template("scan", "toml")
	require.NoError(t, err)
	tree, err := toml.LoadBytes(data)
	require.NoError(t, err)
	assert.Equal(t, "DotNet", tree.Get("baseNamespace"))

	_, _, err = cmd.Template("scan", "ini")
	assert.Error(t, err)
	_, _, err = cmd.Template("serve", "json")
	assert.Error(t, err)
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "generate.yaml")
	ci := cmd.ConfigInit{Command: "generate", Format: "yaml", Output: dest}
	require.NoError(t, ci.Run())
	assert.FileExists(t, dest)

	assert.Error(t, ci.Run())
	ci.Force = true
	require.NoError(t, ci.Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "headerDir: ./generated/include")
}
