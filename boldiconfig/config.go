// Package boldiconfig reads the host's configuration file: defaults,
// then an optional ini-style config file, with the file winning over
// the built-in defaults wherever it sets a field.
package boldiconfig

import (
	"os"

	"gopkg.in/gcfg.v1"

	"github.com/palotasb/boldiweb/cli/logging"
)

var log = logging.Log

// FileName is the name of the config file this package reads from the
// current directory.
const FileName = ".boldibuildconfig"

// Config is the typed configuration for the host binary. Field names
// follow gcfg's case-insensitive section/key matching: a file with
//
//	[build]
//	db = .boldibuild.json
//	loglevel = debug
//
// populates Build.Db and Build.LogLevel below.
type Config struct {
	Build struct {
		// Db is the path to the persisted build database.
		Db string
		// LogLevel is one of the cli/logging level names (critical,
		// error, warning, notice, info, debug).
		LogLevel string
	}
	Watch struct {
		// DebounceMillis is how long the watch loop waits for a burst
		// of filesystem events to settle before rebuilding.
		DebounceMillis int
	}
}

// Default returns the built-in defaults, used when no config file is
// present or it doesn't set a given field.
func Default() *Config {
	c := &Config{}
	c.Build.Db = ".boldibuild.json"
	c.Build.LogLevel = "info"
	c.Watch.DebounceMillis = 50
	return c
}

// Read loads Default() and overlays FileName from the current directory,
// if present. A missing or malformed config file is not an error -
// exactly BuildDB.Load's tolerance policy - since a fresh checkout with
// no config should just behave like the defaults.
func Read() *Config {
	config := Default()
	if _, err := os.Stat(FileName); err != nil {
		return config
	}
	if err := gcfg.ReadFileInto(config, FileName); err != nil && gcfg.FatalOnly(err) != nil {
		log.Warning("Error reading %s: %s; using defaults", FileName, err)
		return Default()
	} else if err != nil {
		log.Warning("Error in %s: %s", FileName, err)
	}
	return config
}
