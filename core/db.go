package core

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/palotasb/boldiweb/cli/logging"
)

var log = logging.Log

// BuildDB is the persistent record of the build graph between
// invocations: a target's last-known stamp, and for every target that
// has been rebuilt at least once, the stamps of its dependencies as of
// that rebuild.
//
// Dependency entries for a target are entirely replaced at the start of
// every rebuild of that target; they are a transcript of the most recent
// build, not an accumulated set. Target entries are created on first
// rebuild, updated on every subsequent one, and never explicitly
// deleted - a stale entry for a target that no longer exists is
// harmless.
type BuildDB struct {
	Targets      map[Target]Stamp
	Dependencies map[Target]*OrderedStamps
}

// NewBuildDB returns an empty, ready-to-use BuildDB.
func NewBuildDB() *BuildDB {
	return &BuildDB{
		Targets:      map[Target]Stamp{},
		Dependencies: map[Target]*OrderedStamps{},
	}
}

// buildDBDoc is the on-disk document shape: two top-level keys, targets
// and dependencies. Unrecognized keys are ignored by encoding/json
// automatically; wrong-typed values for these two keys are handled
// explicitly in Load below.
type buildDBDoc struct {
	Targets      map[Target]Stamp          `json:"targets"`
	Dependencies map[Target]*OrderedStamps `json:"dependencies"`
}

// Load reads the BuildDB from path. A missing, unreadable, malformed, or
// non-map document is never an error: it simply yields an empty DB, on
// the theory that a fresh checkout with no build history should behave
// exactly like a first build, not like a fatal error.
func (db *BuildDB) Load(path string) {
	db.Targets = map[Target]Stamp{}
	db.Dependencies = map[Target]*OrderedStamps{}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Debug("No build database at %s (%s); starting fresh", path, err)
		return
	}
	var doc buildDBDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warning("Build database at %s has a malformed field (%s); affected keys start fresh", path, err)
	}
	if doc.Targets != nil {
		db.Targets = doc.Targets
	}
	if doc.Dependencies != nil {
		db.Dependencies = doc.Dependencies
	}
}

// Save writes both maps to path as a single indented JSON document, using
// a write-to-temp-file-then-rename so that a reader (or a crash) never
// observes a partially-written database. This mirrors the atomic-write
// pattern fs.WriteFile uses for build outputs, reimplemented locally
// here to keep core free of a dependency on the fs package (fs in turn
// depends on core to implement Handler).
func (db *BuildDB) Save(path string) error {
	doc := buildDBDoc{Targets: db.Targets, Dependencies: db.Dependencies}
	if doc.Targets == nil {
		doc.Targets = map[Target]Stamp{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(path, data)
}

// DependenciesFor returns the ordered dependency map recorded for
// target, creating and attaching an empty one if none exists yet.
func (db *BuildDB) DependenciesFor(target Target) *OrderedStamps {
	deps, ok := db.Dependencies[target]
	if !ok {
		deps = NewOrderedStamps()
		db.Dependencies[target] = deps
	}
	return deps
}

// ResetDependencies discards any previously recorded dependency set for
// target, replacing it with a fresh, empty one. Called at the start of
// every rebuild: dependency sets are a transcript of the current build,
// not an accumulated set, so stale entries must not survive a rebuild
// that no longer registers them.
func (db *BuildDB) ResetDependencies(target Target) {
	db.Dependencies[target] = NewOrderedStamps()
}

func atomicWriteFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o775); err != nil {
			return err
		}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmpName, path); err != nil {
		// os.Rename doesn't work across filesystems; fall back to a
		// copy and remove of the temp file, mirroring fs.renameFile's
		// fallback for build outputs.
		return copyAndRemove(tmpName, path)
	}
	return nil
}

func copyAndRemove(from, to string) error {
	data, err := os.ReadFile(from)
	if err != nil {
		return err
	}
	if err := os.WriteFile(to, data, 0o664); err != nil {
		return err
	}
	return os.Remove(from)
}
