// Command boldibuild is a thin CLI front end over the build engine: it
// owns no build logic of its own, only flag parsing, config loading and
// handler-chain assembly, exercising the registration interface the
// engine exposes to a host.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	flags "github.com/thought-machine/go-flags"

	"github.com/palotasb/boldiweb/boldiconfig"
	"github.com/palotasb/boldiweb/build"
	"github.com/palotasb/boldiweb/cli/logging"
	"github.com/palotasb/boldiweb/concat"
	"github.com/palotasb/boldiweb/core"
	bfs "github.com/palotasb/boldiweb/fs"
	"github.com/palotasb/boldiweb/watch"
)

var log = logging.Log

var opts struct {
	Usage string `usage:"boldibuild is a small, self-stamping incremental build engine.\n\nIt decides whether a target is up to date by comparing persisted stamps against the current filesystem state, rebuilding only what's stale."`

	Build struct {
		Concat map[string]string `long:"concat" description:"Register a derived target as the concatenation of one or more sources, e.g. --concat out.txt=a.txt,a.txt"`
		Args   struct {
			Target string `positional-arg-name:"target" description:"Target to build"`
		} `positional-args:"true" required:"true"`
	} `command:"build" description:"Builds a target if it's out of date"`

	Watch struct {
		Concat map[string]string `long:"concat" description:"Register a derived target as the concatenation of one or more sources, e.g. --concat out.txt=a.txt,a.txt"`
		Args   struct {
			Target string `positional-arg-name:"target" description:"Target to build and watch"`
		} `positional-args:"true" required:"true"`
	} `command:"watch" description:"Builds a target, then rebuilds it whenever its dependencies change"`
}

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}
	config := boldiconfig.Read()
	logging.SetLevel(logging.ParseLevel(config.Build.LogLevel))

	var err error
	switch parser.Active.Name {
	case "build":
		err = runBuild(config, opts.Build.Args.Target, opts.Build.Concat)
	case "watch":
		err = runWatch(config, opts.Watch.Args.Target, opts.Watch.Concat)
	}
	if err != nil {
		log.Error("%s", err)
		os.Exit(1)
	}
}

// newSystem assembles the handler chain for this invocation: derived
// concat targets first, the plain-file catch-all last, since the first
// handler in the chain that accepts a target wins.
func newSystem(config *boldiconfig.Config, concatSpecs map[string]string) (*build.System, error) {
	handler := concat.NewHandler()
	for target, sourceList := range concatSpecs {
		sources := strings.Split(sourceList, ",")
		handler.Sources[target] = sources
	}
	system := build.NewSystem(config.Build.Db, handler, bfs.FileHandler{})
	system.Load()
	return system, nil
}

func runBuild(config *boldiconfig.Config, target core.Target, concatSpecs map[string]string) error {
	system, err := newSystem(config, concatSpecs)
	if err != nil {
		return err
	}
	start := time.Now()
	if err := system.Build(target); err != nil {
		return err
	}
	elapsed := time.Since(start)
	if info, statErr := os.Stat(target); statErr == nil {
		fmt.Printf("%s is up to date (%s, %s)\n", target, humanize.Bytes(uint64(info.Size())), elapsed.Round(time.Millisecond))
	} else {
		fmt.Printf("%s is up to date (%s)\n", target, elapsed.Round(time.Millisecond))
	}
	return nil
}

func runWatch(config *boldiconfig.Config, target core.Target, concatSpecs map[string]string) error {
	system, err := newSystem(config, concatSpecs)
	if err != nil {
		return err
	}
	debounce := time.Duration(config.Watch.DebounceMillis) * time.Millisecond
	return watch.Run(context.Background(), system, target, debounce)
}
