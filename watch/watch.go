// Package watch provides a filesystem watcher that re-invokes the engine
// whenever a file a target (transitively) depends on changes. It never
// returns successfully: it watches until told to stop or until it hits a
// fatal setup error.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/palotasb/boldiweb/build"
	"github.com/palotasb/boldiweb/cli/logging"
	"github.com/palotasb/boldiweb/core"
)

var log = logging.Log

// Run builds target once, then watches the directories of every file
// target it (transitively) depends on and rebuilds it whenever one of
// them changes, debouncing bursts of events within debounce.
//
// Only one Build call is ever in flight: this does not give the engine
// concurrent builders, it just re-invokes the same synchronous Build in
// response to filesystem activity, while staying inside the engine's
// single-threaded concurrency model.
func Run(ctx context.Context, system *build.System, target core.Target, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := system.Build(target); err != nil {
		log.Error("initial build of %s failed: %s", target, err)
	}
	watched := map[string]bool{}
	if err := refreshWatches(watcher, system, target, watched); err != nil {
		return err
	}
	log.Notice("watching %s for changes", target)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			log.Debug("event: %s", event)
			if !isRelevant(event, watched) {
				continue
			}
			drain(watcher.Events, debounce)
			log.Notice("rebuilding %s", target)
			if err := system.Build(target); err != nil {
				log.Error("build of %s failed: %s", target, err)
			}
			if err := refreshWatches(watcher, system, target, watched); err != nil {
				log.Warning("failed to refresh watches for %s: %s", target, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warning("watcher error: %s", err)
		}
	}
}

// isRelevant reports whether event names a path this caller has
// explicitly asked to watch. fsnotify watches whole directories, so this
// filters out unrelated siblings.
func isRelevant(event fsnotify.Event, watched map[string]bool) bool {
	return watched[event.Name]
}

// drain discards further events for the next debounce window, coalescing
// a burst of saves (e.g. from an editor) into a single rebuild.
func drain(events <-chan fsnotify.Event, debounce time.Duration) {
	timer := time.NewTimer(debounce)
	defer timer.Stop()
	for {
		select {
		case <-events:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(debounce)
		case <-timer.C:
			return
		}
	}
}

// refreshWatches walks target's recorded dependencies transitively and
// adds a watch on the directory of target and of every dependency it
// reaches, recording the exact paths of interest in watched; a directory
// that can't be watched is skipped with a debug log. It's called after
// every rebuild so that newly recorded dependencies get watched. Watches
// and watched entries are only ever added: a path that drops out of the
// dependency set stays watched.
func refreshWatches(watcher *fsnotify.Watcher, system *build.System, target core.Target, watched map[string]bool) error {
	seen := map[core.Target]bool{}
	dirs := map[string]bool{}
	var visit func(core.Target)
	visit = func(t core.Target) {
		if seen[t] {
			return
		}
		seen[t] = true
		watched[t] = true
		dirs[filepath.Dir(t)] = true
		for _, dep := range system.DB.DependenciesFor(t).Snapshot() {
			visit(dep.Dep)
		}
	}
	visit(target)
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			log.Debug("could not watch %s: %s", dir, err)
		}
	}
	return nil
}
