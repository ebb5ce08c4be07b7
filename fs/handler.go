package fs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/palotasb/boldiweb/core"
)

// FileHandler treats a target as a filesystem path and stamps it from
// stat metadata. It accepts every target, so it must be installed last
// in a handler chain, as the catch-all behind any more specific handler.
//
// FileHandler's RebuildImpl is deliberately unimplemented: it's the base
// for source files, which are observed but never rebuilt. Derived-file
// handlers (see the concat package) embed FileHandler to inherit Stamp
// and StampsMatch, and supply their own CanHandle and RebuildImpl.
type FileHandler struct{}

// CanHandle always returns true.
func (FileHandler) CanHandle(core.Target) bool { return true }

// Stamp returns the eight whitespace-separated decimal fields
// "mode ino dev uid gid size mtime_ns ctime_ns", or the empty sentinel if
// the path can't be stat'd.
func (FileHandler) Stamp(target core.Target) core.Stamp {
	mode, ino, dev, uid, gid, size, mtimeNs, ctimeNs, ok := stat(target)
	if !ok {
		return ""
	}
	fields := []int64{mode, ino, dev, uid, gid, size, mtimeNs, ctimeNs}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = strconv.FormatInt(f, 10)
	}
	return strings.Join(parts, " ")
}

// StampsMatch applies the default empty-sentinel comparison rule.
func (FileHandler) StampsMatch(a, b core.Stamp) bool {
	return core.StampsMatch(a, b)
}

// RebuildImpl is unimplemented: FileHandler only observes files, it
// never produces them. Calling it on a bare FileHandler is a programmer
// error in how the handler chain was assembled.
func (FileHandler) RebuildImpl(target core.Target, _ core.Builder) error {
	return fmt.Errorf("%w: %q is a plain file with no rebuild procedure", core.ErrCannotBuild, target)
}
