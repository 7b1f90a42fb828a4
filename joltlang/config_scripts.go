package joltlang

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"slices"

	"github.com/reusee/dscope"
	"github.com/reusee/jolt/configs"
	"github.com/reusee/jolt/joltsyntax"
	"github.com/samber/lo"
)

var scriptFilenames = []string{
	"joltrc.jolt",
	".joltrc.jolt",
}

// ConfigScriptPaths lists the configuration scripts in /etc, the user config
// dir and the working directory, in that order.
func ConfigScriptPaths() []string {
	var dirs []string
	dirs = append(dirs, "/etc")
	if configDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, configDir)
	}
	if workingDir, err := os.Getwd(); err == nil {
		dirs = append(dirs, workingDir)
	}

	var paths []string
	for _, dir := range dirs {
		for _, name := range scriptFilenames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}
	return paths
}

// ConfigScriptFork runs each script in a fresh memory and forks scope with its
// top level names, so a later script overrides an earlier one.
//
//	let print_results = false;
//	let timeout = "3s";
func ConfigScriptFork(ctx context.Context, scope dscope.Scope, paths []string) (dscope.Scope, error) {
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return scope, wrap(err)
		}
		program, err := joltsyntax.Parse(joltsyntax.NewSource(path, string(content)))
		if err != nil {
			return scope, err
		}
		memory := NewMemory()
		if _, err := NewRuntime(memory, nil).Run(ctx, program); err != nil {
			return scope, err
		}
		scope = configs.ScriptFork(scope, goGlobals(memory))
	}
	return scope, nil
}

func goGlobals(memory *Memory) iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for name, record := range memory.Globals() {
			if !yield(name, ToGo(record.Value)) {
				return
			}
		}
	}
}

// ToGo converts a value to bool, float64, string or []any.
// A list that contains itself converts to nil where it repeats.
func ToGo(v Value) any {
	return toGo(v, nil)
}

func toGo(v Value, path []*List) any {
	switch v := v.(type) {
	case Bool:
		return bool(v)
	case Number:
		return float64(v)
	case String:
		return string(v)
	case *List:
		if slices.Contains(path, v) {
			return nil
		}
		path = append(path, v)
		return lo.Map(v.Elements, func(elem Value, _ int) any {
			return toGo(elem, path)
		})
	}
	return nil
}
