package cmd_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"github.com/oxidize/oxidize/internal/cmd"
	"github.com/oxidize/oxidize/internal/codegen/scanner"
	"github.com/oxidize/oxidize/internal/log"
)

const model = `
types:
  - name: Demo.Point
    kind: struct
    fields:
      - name: X
        type: int
      - name: Y
        type: int
  - name: Demo.Exposer
    kind: class
    attributes:
      - name: Reinterop
    methods:
      - name: ExposeToCPP
        body:
          - local: p
            of: Demo.Point
          - get: Demo.Point.X
            target: {type: p}
`

func writeModel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(model), 0o644))
	return path
}

func TestScanReportsGenerationMap(t *testing.T) {
	s := cmd.Scan{Models: []string{writeModel(t)}, Format: "json"}
	var buf bytes.Buffer
	require.NoError(t, s.ScanTo(context.Background(), log.Discard(), &buf))

	var report cmd.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))

	var point *scanner.TypeSummary
	for i := range report.Types {
		if report.Types[i].Type == "Demo.Point" {
			point = &report.Types[i]
		}
	}
	require.NotNil(t, point, "Demo.Point missing from %s", buf.String())
	assert.Equal(t, "BlittableStruct", point.Kind)
	assert.Equal(t, []string{"Demo.Point.X", "Demo.Point.Y"}, point.Fields)
	assert.Empty(t, report.Diagnostics)
}

func TestScanNonBlittableOption(t *testing.T) {
	s := cmd.Scan{
		Models:  []string{writeModel(t)},
		Options: cmd.Options{NonBlittableTypes: []string{"Demo.Point"}},
		Format:  "yaml",
	}
	var buf bytes.Buffer
	require.NoError(t, s.ScanTo(context.Background(), log.Discard(), &buf))

	var report cmd.Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &report))
	for _, ty := range report.Types {
		if ty.Type == "Demo.Point" {
			assert.Equal(t, "NonBlittableStructWrapper", ty.Kind)
		}
	}
}

func TestScanMissingModel(t *testing.T) {
	s := cmd.Scan{Models: []string{filepath.Join(t.TempDir(), "missing.yaml")}, Format: "json"}
	assert.Error(t, s.ScanTo(context.Background(), log.Discard(), &bytes.Buffer{}))
}

func TestScanWritesOutputFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "scan.json")
	s := cmd.Scan{Models: []string{writeModel(t)}, Format: "json", Output: dest}
	require.NoError(t, s.Run(log.Discard()))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var report cmd.Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.NotEmpty(t, report.Types)
}
