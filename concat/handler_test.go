package concat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palotasb/boldiweb/core"
)

func TestHandlerCanHandleOnlyConfiguredTargets(t *testing.T) {
	h := NewHandler()
	h.Sources["out"] = []core.Target{"a"}
	assert.True(t, h.CanHandle("out"))
	assert.False(t, h.CanHandle("other"))
}

type fakeBuilder struct {
	sources []core.Target
}

func (b *fakeBuilder) Build(core.Target) error      { return nil }
func (b *fakeBuilder) AddSource(target core.Target) { b.sources = append(b.sources, target) }

func TestRebuildImplConcatenatesInOrder(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	out := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(a, []byte("A"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("B"), 0o644))

	h := NewHandler()
	h.Sources[out] = []core.Target{a, b, a}

	builder := &fakeBuilder{}
	require.NoError(t, h.RebuildImpl(out, builder))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "ABA", string(data))
	assert.Equal(t, []core.Target{a, b, a}, builder.sources)
}

func TestRebuildImplMissingSourceFails(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")
	h := NewHandler()
	h.Sources[out] = []core.Target{filepath.Join(dir, "missing.txt")}

	err := h.RebuildImpl(out, &fakeBuilder{})
	assert.Error(t, err)
}

func TestRebuildImplUnconfiguredTargetFails(t *testing.T) {
	h := NewHandler()
	err := h.RebuildImpl("unknown", &fakeBuilder{})
	assert.ErrorIs(t, err, core.ErrCannotBuild)
}
