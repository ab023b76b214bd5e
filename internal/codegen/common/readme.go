package common

import (
	"fmt"
	"path/filepath"
)

const readmeTemplate = `# Generated native bindings

This directory is generated by oxidize. Do not edit it by hand; rerun the
generator instead.

## Initialization

The managed side calls ` + "`initializeOxidize`" + ` exactly once, passing a table of
%d function pointers. Table identity: ` + "`%s`" + `.

The native library must be built from the same generator run as the managed
assembly. A table of any other size aborts the process.
`

// Readme describes the function pointer table for whoever opens the
// generated header directory.
func Readme(outputDir string, slots int, tableID string) File {
	return File{
		Path:    filepath.Join(outputDir, "README.md"),
		Content: []byte(fmt.Sprintf(readmeTemplate, slots, tableID)),
	}
}
