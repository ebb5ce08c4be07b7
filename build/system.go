// Package build implements the orchestrator at the heart of the engine:
// handler resolution, the two-phase staleness check, and the atomic
// rebuild step that keeps the build database consistent.
package build

import (
	"github.com/palotasb/boldiweb/cli/logging"
	"github.com/palotasb/boldiweb/core"
)

var log = logging.Log

// System is the orchestrator: it holds an ordered chain of handlers and
// the build database they read and write. It is not safe for concurrent
// use: Build and Rebuild run synchronously on the caller's goroutine.
type System struct {
	// DBPath is where the build database is persisted. Save is called
	// after every successful rebuild.
	DBPath string
	// Handlers is the ordered chain consulted by GetHandler. Order is
	// significant and is the only routing mechanism: the first handler
	// whose CanHandle accepts a target wins.
	Handlers []core.Handler
	// DB is the in-memory build database. Call Load before the first
	// Build call to populate it from disk.
	DB *core.BuildDB

	chain []core.Target // targets currently being built, for cycle detection
}

// NewSystem returns a System with an empty, unloaded database. Call Load
// to populate it from dbPath before building anything, or leave it
// unloaded to start from a clean slate (equivalent to a first build of
// everything).
func NewSystem(dbPath string, handlers ...core.Handler) *System {
	return &System{
		DBPath:   dbPath,
		Handlers: handlers,
		DB:       core.NewBuildDB(),
	}
}

// Load populates the build database from DBPath. It never fails: a
// missing or malformed database is treated as empty.
func (s *System) Load() {
	s.DB.Load(s.DBPath)
}

// GetHandler returns the first handler in the chain that accepts target,
// or core.NullHandler{} if none do.
func (s *System) GetHandler(target core.Target) core.Handler {
	for _, h := range s.Handlers {
		if h.CanHandle(target) {
			return h
		}
	}
	return core.NullHandler{}
}

// RegisterDependency resolves dep's handler, stamps it, and records the
// result under target in the build database. It does not build dep; it
// only records a fingerprint. Use BuildAsDependency when dep is itself a
// derived target that needs building first.
func (s *System) RegisterDependency(target, dep core.Target) {
	stamp := s.GetHandler(dep).Stamp(dep)
	s.DB.DependenciesFor(target).Set(dep, stamp)
}

// BuildAsDependency builds dep to completion and then registers it as a
// dependency of target. Handlers use this for derived sub-targets; they
// use RegisterDependency alone for pure sources.
func (s *System) BuildAsDependency(target, dep core.Target) error {
	if err := s.Build(dep); err != nil {
		return err
	}
	s.RegisterDependency(target, dep)
	return nil
}

// callback implements core.Builder for a single in-progress rebuild.
type callback struct {
	system *System
	target core.Target
}

func (c *callback) Build(sub core.Target) error {
	return c.system.BuildAsDependency(c.target, sub)
}

func (c *callback) AddSource(source core.Target) {
	c.system.RegisterDependency(c.target, source)
}

// Rebuild is the atomic unit of progress: it erases target's prior
// dependency record, invokes the handler's rebuild procedure, and - only
// if that succeeds - records the target's new stamp and flushes the
// database to disk.
//
// If RebuildImpl returns an error, Rebuild returns it unchanged without
// updating target's stamp or saving. Any dependencies the handler
// registered before failing remain in the in-memory database (the
// handler's callbacks write them directly). This call makes no save of
// its own on failure; a sub-target the handler rebuilt through the
// builder before failing has already saved the database, including
// whatever was in memory for target at that moment.
func (s *System) Rebuild(target core.Target) error {
	log.Info("rebuild(%q)", target)
	handler := s.GetHandler(target)
	s.DB.ResetDependencies(target)

	cb := &callback{system: s, target: target}
	if err := handler.RebuildImpl(target, cb); err != nil {
		return err
	}
	s.DB.Targets[target] = handler.Stamp(target)
	if err := s.DB.Save(s.DBPath); err != nil {
		return err
	}
	return nil
}

// Build decides whether target is up to date and rebuilds it if not. The
// decision procedure:
//
//  1. If target has never been built, or its own current stamp no longer
//     matches what was recorded, rebuild unconditionally - this handles
//     a freshly created target and an externally edited or deleted
//     output identically, via the empty-stamp sentinel.
//  2. Otherwise walk its recorded dependencies in registration order.
//     For each one that is itself a known (buildable) target, build it
//     first - it may turn out to need rebuilding itself. Then compare
//     its *current* stamp against the stamp *recorded at target's last
//     rebuild*, not against its own up-to-date-ness: this is what makes
//     the engine immune to A-B-A edits (a dependency modified away from
//     and back to the value the consumer was built against must not
//     trigger a rebuild), while still catching the case where the
//     dependency is currently fine in its own right but different from
//     what the consumer actually saw. The first mismatch triggers a
//     rebuild and stops the scan; the rebuild will re-register fresh
//     stamps for everything anyway.
func (s *System) Build(target core.Target) error {
	for _, t := range s.chain {
		if t == target {
			return &CycleError{Chain: append(append([]core.Target{}, s.chain...), target)}
		}
	}
	s.chain = append(s.chain, target)
	defer func() { s.chain = s.chain[:len(s.chain)-1] }()

	log.Debug("build(%q)", target)
	handler := s.GetHandler(target)
	oldStamp, known := s.DB.Targets[target]
	curStamp := handler.Stamp(target)
	if !known {
		log.Debug("need to build %s, outputs aren't there", target)
		return s.Rebuild(target)
	}
	if !handler.StampsMatch(oldStamp, curStamp) {
		log.Debug("need to rebuild %s, target has changed", target)
		return s.Rebuild(target)
	}

	for _, dep := range s.DB.DependenciesFor(target).Snapshot() {
		if _, isKnownTarget := s.DB.Targets[dep.Dep]; isKnownTarget {
			if err := s.Build(dep.Dep); err != nil {
				return err
			}
		}
		depHandler := s.GetHandler(dep.Dep)
		newDepStamp := depHandler.Stamp(dep.Dep)
		if !depHandler.StampsMatch(dep.Stamp, newDepStamp) {
			log.Debug("need to rebuild %s, dependency %s has changed", target, dep.Dep)
			return s.Rebuild(target)
		}
	}
	return nil
}
