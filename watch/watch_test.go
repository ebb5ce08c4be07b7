package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palotasb/boldiweb/build"
	"github.com/palotasb/boldiweb/concat"
	"github.com/palotasb/boldiweb/core"
	"github.com/palotasb/boldiweb/fs"
)

func TestIsRelevantFiltersUnwatchedPaths(t *testing.T) {
	watched := map[string]bool{"a.txt": true}
	assert.True(t, isRelevant(fsnotify.Event{Name: "a.txt"}, watched))
	assert.False(t, isRelevant(fsnotify.Event{Name: "b.txt"}, watched))
}

func TestDrainCoalescesBurstIntoOneReturn(t *testing.T) {
	events := make(chan fsnotify.Event, 4)
	events <- fsnotify.Event{Name: "a"}
	events <- fsnotify.Event{Name: "a"}
	events <- fsnotify.Event{Name: "a"}

	start := time.Now()
	drain(events, 20*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Empty(t, events)
}

func TestRefreshWatchesCollectsTransitiveDependencyDirs(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.txt")
	bPath := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(aPath, []byte("x"), 0o644))

	h := concat.NewHandler()
	h.Sources[bPath] = []core.Target{aPath}
	system := build.NewSystem(filepath.Join(dir, "db.json"), h, fs.FileHandler{})
	require.NoError(t, system.Build(bPath))

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	watched := map[string]bool{}
	require.NoError(t, refreshWatches(watcher, system, bPath, watched))
	assert.True(t, watched[aPath])
	assert.True(t, watched[bPath])
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.txt")
	bPath := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(aPath, []byte("x"), 0o644))

	h := concat.NewHandler()
	h.Sources[bPath] = []core.Target{aPath}
	system := build.NewSystem(filepath.Join(dir, "db.json"), h, fs.FileHandler{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := Run(ctx, system, bPath, 10*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	data, readErr := os.ReadFile(bPath)
	require.NoError(t, readErr)
	assert.Equal(t, "x", string(data))
}
