package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathExistsAndFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.True(t, PathExists(file))
	assert.True(t, FileExists(file))
	assert.True(t, PathExists(dir))
	assert.False(t, FileExists(dir))
	assert.False(t, PathExists(filepath.Join(dir, "missing")))
}

func TestWriteFileCreatesParentDirAndContent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "out.txt")

	require.NoError(t, WriteFile(strings.NewReader("hello"), target, 0o644))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestWriteFileLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")
	require.NoError(t, WriteFile(strings.NewReader("hello"), target, 0o644))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.txt", entries[0].Name())
}

func TestWriteFileOverwritesExistingContent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")
	require.NoError(t, WriteFile(strings.NewReader("first"), target, 0o644))
	require.NoError(t, WriteFile(strings.NewReader("second"), target, 0o644))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}
