package joltconfigs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/reusee/jolt/configs"
	"github.com/reusee/jolt/logs"
	"github.com/reusee/jolt/modes"
)

//go:embed schema.cue
var schema string

var filenames = []string{
	"jolt.cue",
	".jolt.cue",
}

// ConfigPaths are the cue files to load, most specific first.
// Tests load none unless they provide their own.
type ConfigPaths []string

func (Module) ConfigPaths(
	mode modes.Mode,
) ConfigPaths {
	if mode == modes.ModeDevelopment {
		return nil
	}
	var paths []string

	// working directory
	if workingDir, err := os.Getwd(); err == nil {
		paths = append(paths, existing(workingDir, filenames)...)
	}

	// user config dir
	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, existing(configDir, filenames)...)
	}

	// system wide dir
	paths = append(paths, existing("/etc", filenames)...)

	return paths
}

func existing(dir string, names []string) (ret []string) {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			ret = append(ret, path)
		}
	}
	return
}

func (Module) ConfigsLoader(
	logger logs.Logger,
	paths ConfigPaths,
) configs.Loader {
	if len(paths) > 0 {
		logger.Debug("config files",
			"paths", []string(paths),
		)
	}
	return configs.NewLoader(paths, schema)
}
