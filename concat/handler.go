// Package concat provides a minimal concrete derived-file handler:
// concatenating a fixed list of source files into one output. It exists
// to give the engine a second, real handler kind to dispatch to in tests
// and in the CLI demo, standing in for the shape of the handlers a real
// host (like the photo-album generator this engine was built for) would
// install - without implementing that generator's EXIF/templating logic,
// which is out of scope.
package concat

import (
	"bytes"
	"fmt"
	"os"

	"github.com/palotasb/boldiweb/core"
	"github.com/palotasb/boldiweb/fs"
)

// Handler rebuilds each of its configured targets by reading its source
// files, in order, and writing their concatenation to the target path.
// A source that is itself one of this handler's configured targets is
// built first and registered via builder.Build; every other source is
// treated as a plain file and registered via AddSource, not built.
type Handler struct {
	fs.FileHandler
	// Sources maps a derived target to the ordered list of source
	// targets concatenated to produce it. A target repeated in its own
	// source list (as in "double this file") is supported: it's
	// registered as a dependency once, with its content read as many
	// times as it's listed.
	Sources map[core.Target][]core.Target
}

// NewHandler returns a Handler with an empty source map.
func NewHandler() *Handler {
	return &Handler{Sources: map[core.Target][]core.Target{}}
}

// CanHandle reports whether target has a configured source list.
func (h *Handler) CanHandle(target core.Target) bool {
	_, ok := h.Sources[target]
	return ok
}

// RebuildImpl concatenates the configured sources and writes the result
// to target, registering every source as a dependency.
func (h *Handler) RebuildImpl(target core.Target, builder core.Builder) error {
	sources, ok := h.Sources[target]
	if !ok {
		return fmt.Errorf("%w: %q has no configured sources", core.ErrCannotBuild, target)
	}
	var buf bytes.Buffer
	for _, src := range sources {
		_, derived := h.Sources[src]
		if derived {
			if err := builder.Build(src); err != nil {
				return err
			}
		}
		data, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("reading source %q for %q: %w", src, target, err)
		}
		buf.Write(data)
		if !derived {
			builder.AddSource(src)
		}
	}
	return fs.WriteFile(&buf, target, 0o664)
}
