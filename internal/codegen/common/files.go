package common

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/oxidize/oxidize/internal/log"
)

// FileHeader returns the banner written at the top of every generated
// file. It carries no timestamp so regenerating unchanged input leaves
// files untouched.
func FileHeader(comment, language string) string {
	version, err := GetVersion()
	if err != nil {
		version = "unknown"
	}
	return fmt.Sprintf("%s Code generated by oxidize %s. DO NOT EDIT.\n%s %s side of the managed/native bindings.\n", comment, version, comment, language)
}

// WriteFile writes content to path, creating parent directories, unless
// the file already holds exactly that content. It reports whether the
// file was written.
func WriteFile(logger *slog.Logger, path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, content) {
		logger.Log(context.Background(), log.LevelTrace, "Unchanged", "file", path)
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	logger.Debug("Wrote file", "file", path)
	return true, nil
}

// File is a generated file held in memory until it is written.
type File struct {
	Path    string
	Content []byte
}

// WriteFiles writes every file through WriteFile and returns how many
// actually changed on disk.
func WriteFiles(logger *slog.Logger, files []File) (int, error) {
	written := 0
	for _, f := range files {
		changed, err := WriteFile(logger, f.Path, f.Content)
		if err != nil {
			return written, err
		}
		if changed {
			written++
		}
	}
	return written, nil
}
