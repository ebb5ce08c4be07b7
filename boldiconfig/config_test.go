package boldiconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })
}

func TestReadWithNoConfigFileReturnsDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	config := Read()
	assert.Equal(t, Default(), config)
}

func TestReadOverlaysConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	contents := "[build]\ndb = custom.json\nloglevel = debug\n\n[watch]\ndebouncemillis = 250\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(contents), 0o644))

	config := Read()
	assert.Equal(t, "custom.json", config.Build.Db)
	assert.Equal(t, "debug", config.Build.LogLevel)
	assert.Equal(t, 250, config.Watch.DebounceMillis)
}

func TestReadMalformedConfigFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("not an ini file {{{"), 0o644))

	config := Read()
	assert.Equal(t, Default(), config)
}
