package common_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxidize/oxidize/internal/codegen/common"
	"github.com/oxidize/oxidize/internal/log"
)

func TestParameterNames(t *testing.T) {
	cases := []struct {
		name     string
		in       []string
		reserved []string
		want     []string
	}{
		{"plain", []string{"x", "y"}, nil, []string{"x", "y"}},
		{"empty names", []string{"", ""}, nil, []string{"arg0", "arg1"}},
		{"cpp keyword", []string{"delete", "register"}, nil, []string{"delete_", "register_"}},
		{"csharp keyword", []string{"@params", "object"}, nil, []string{"params_", "object_"}},
		{"leading digit", []string{"3d"}, nil, []string{"Num3d"}},
		{"reserved", []string{"handle", "result"}, []string{"handle", "result"}, []string{"handle_", "result_"}},
		{"duplicates", []string{"a", "a", "a"}, nil, []string{"a", "a_", "a__"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, common.ParameterNames(tc.in, tc.reserved...))
		})
	}
}

func TestFileHeaderHasNoTimestamp(t *testing.T) {
	h := common.FileHeader("//", "C++")
	assert.Contains(t, h, "DO NOT EDIT")
	assert.Equal(t, h, common.FileHeader("//", "C++"))
}

func TestWriteFilesSkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	files := []common.File{
		{Path: filepath.Join(dir, "a", "One.h"), Content: []byte("one\n")},
		{Path: filepath.Join(dir, "b", "Two.cpp"), Content: []byte("two\n")},
	}
	n, err := common.WriteFiles(log.Discard(), files)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = common.WriteFiles(log.Discard(), files)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	files[1].Content = []byte("changed\n")
	n, err = common.WriteFiles(log.Discard(), files)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(files[1].Path)
	require.NoError(t, err)
	assert.Equal(t, "changed\n", string(data))
}

func TestReadmeNamesTable(t *testing.T) {
	f := common.Readme("include", 7, "1234")
	assert.Equal(t, filepath.Join("include", "README.md"), f.Path)
	assert.Contains(t, string(f.Content), "1234")
}
