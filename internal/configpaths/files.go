// Package configpaths locates oxidize config files.
package configpaths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appName = "oxidize"

// baseNames are the file names, without extension, looked up in every
// candidate directory. Command-specific files let one directory hold the
// settings of generate and scan side by side.
var baseNames = []string{"config", "generate", "scan"}

// DefaultConfigDir returns the platform-specific configuration directory.
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("AppData"); appdata != "" {
			return filepath.Join(appdata, appName), nil
		}
		return "", errors.New("AppData not set")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", appName), nil
		}
		return "", errors.New("HOME not set")
	}
}

// DefaultNamedConfigPath returns the default config file path for the given
// format and base name (e.g., "generate").
func DefaultNamedConfigPath(baseName, format string) (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, baseName+"."+Extension(format)), nil
}

// Extension maps a format name to the file extension written for it.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return "json"
	}
}

// EnsureDir ensures the directory for a given file path exists.
func EnsureDir(filePath string) error {
	return os.MkdirAll(filepath.Dir(filePath), 0o755)
}

// Candidates are config file paths grouped by the loader that reads them,
// highest priority first.
type Candidates struct {
	JSON []string
	YAML []string
	TOML []string
}

func (c *Candidates) add(path string) {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		c.YAML = append(c.YAML, path)
	case ".toml":
		c.TOML = append(c.TOML, path)
	default:
		c.JSON = append(c.JSON, path)
	}
}

func (c *Candidates) addDir(dir string, bases ...string) {
	for _, base := range bases {
		for _, ext := range []string{".json", ".yaml", ".yml", ".toml"} {
			c.add(filepath.Join(dir, base+ext))
		}
	}
}

// ConfigCandidatePaths builds candidate paths for config files per format.
// If userPath is provided, it is prioritized and routed to the matching
// loader by extension. The working directory comes next, then the user
// config directory and finally /etc/oxidize on unix.
func ConfigCandidatePaths(userPath string) Candidates {
	var c Candidates
	if userPath != "" {
		c.add(userPath)
	}

	if wd, err := os.Getwd(); err == nil {
		c.addDir(wd, append([]string{appName}, baseNames...)...)
	}
	if dir, err := DefaultConfigDir(); err == nil {
		c.addDir(dir, baseNames...)
	}
	if runtime.GOOS != "windows" {
		c.addDir(filepath.Join("/etc", appName), baseNames...)
	}
	return c
}
