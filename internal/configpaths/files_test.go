package configpaths_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxidize/oxidize/internal/configpaths"
)

func TestUserPathComesFirst(t *testing.T) {
	cases := []struct {
		path string
		pick func(configpaths.Candidates) []string
	}{
		{"custom.yaml", func(c configpaths.Candidates) []string { return c.YAML }},
		{"custom.yml", func(c configpaths.Candidates) []string { return c.YAML }},
		{"custom.toml", func(c configpaths.Candidates) []string { return c.TOML }},
		{"custom.json", func(c configpaths.Candidates) []string { return c.JSON }},
		{"custom", func(c configpaths.Candidates) []string { return c.JSON }},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			paths := tc.pick(configpaths.ConfigCandidatePaths(tc.path))
			require.NotEmpty(t, paths)
			assert.Equal(t, tc.path, paths[0])
		})
	}
}

func TestCandidatesCoverConfigHome(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG_CONFIG_HOME is not used on windows")
	}
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	c := configpaths.ConfigCandidatePaths("")
	assert.Contains(t, c.YAML, filepath.Join(home, "oxidize", "generate.yaml"))
	assert.Contains(t, c.TOML, filepath.Join(home, "oxidize", "config.toml"))
	assert.Contains(t, c.JSON, filepath.Join("/etc", "oxidize", "scan.json"))
	for _, p := range c.YAML {
		assert.Contains(t, []string{".yaml", ".yml"}, filepath.Ext(p))
	}
}

func TestDefaultNamedConfigPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG_CONFIG_HOME is not used on windows")
	}
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	p, err := configpaths.DefaultNamedConfigPath("generate", "yml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "oxidize", "generate.yaml"), p)

	p, err = configpaths.DefaultNamedConfigPath("generate", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "oxidize", "generate.json"), p)
}
