package build

import (
	"strings"

	"github.com/palotasb/boldiweb/core"
)

// CycleError is returned when Build revisits a target already on its
// current call chain. The Python source this engine is based on assumes
// an acyclic graph and recurses forever on a cycle; detecting revisits
// on the current build path and failing with a clear error is an
// explicit improvement over that source, not a reproduction of it.
//
// Detection is a plain slice walked on a single goroutine's call stack,
// not a background goroutine draining a channel of edges: there's
// nothing to race against here, since this engine never builds two
// targets concurrently.
type CycleError struct {
	// Chain is the sequence of targets from the outermost Build call
	// down to the target that closed the cycle, which appears twice:
	// once where it was first entered, once where the revisit was
	// detected.
	Chain []core.Target
}

func (e *CycleError) Error() string {
	return "dependency cycle detected: " + strings.Join(e.Chain, " -> ")
}
