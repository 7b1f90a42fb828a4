package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Loader reads cue files on first use and validates each against a closed schema.
// Files that do not exist are skipped.
type Loader struct {
	load func() ([]Source, error)
}

// Source is one loaded file.
type Source struct {
	Path  string
	Value cue.Value
}

func NewLoader(paths []string, schemaSrc string) Loader {
	return Loader{
		load: sync.OnceValues(func() ([]Source, error) {
			return loadSources(paths, schemaSrc)
		}),
	}
}

func loadSources(paths []string, schemaSrc string) (ret []Source, err error) {
	ctx := cuecontext.New()

	var schema cue.Value
	if schemaSrc != "" {
		schema = ctx.CompileString(
			"close({"+schemaSrc+"})",
			cue.Filename("schema.cue"),
		)
		if err := schema.Err(); err != nil {
			return nil, fmt.Errorf("schema: %w", err)
		}
	}

	for _, path := range paths {
		content, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}

		value := ctx.CompileBytes(content, cue.Filename(path))
		if err := value.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if schema.Exists() {
			if err := schema.Unify(value).Validate(); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}

		ret = append(ret, Source{
			Path:  path,
			Value: value,
		})
	}

	return
}

// Files returns the paths of the loaded files, in lookup order.
func (l Loader) Files() ([]string, error) {
	sources, err := l.load()
	if err != nil {
		return nil, err
	}
	ret := make([]string, 0, len(sources))
	for _, source := range sources {
		ret = append(ret, source.Path)
	}
	return ret, nil
}

// Lookup yields the value at path from every file that defines it.
func (l Loader) Lookup(path string) iter.Seq2[Source, error] {
	return func(yield func(Source, error) bool) {
		sources, err := l.load()
		if err != nil {
			yield(Source{}, err)
			return
		}
		cuePath := cue.ParsePath(path)
		for _, source := range sources {
			value := source.Value.LookupPath(cuePath)
			if !value.Exists() {
				continue
			}
			if !yield(Source{
				Path:  source.Path,
				Value: value,
			}, nil) {
				return
			}
		}
	}
}

// AssignFirst decodes the first definition of path into target.
// It returns the file that defined the value.
func (l Loader) AssignFirst(path string, target any) (string, error) {
	for source, err := range l.Lookup(path) {
		if err != nil {
			return "", err
		}
		if err := source.Value.Decode(target); err != nil {
			return "", fmt.Errorf("%s: %s: %w", source.Path, path, err)
		}
		return source.Path, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrValueNotFound)
}

// First returns the first definition of path, or the zero value if no file defines it.
func First[T any](loader Loader, path string) T {
	var value T
	if _, err := loader.AssignFirst(path, &value); err != nil {
		if errors.Is(err, ErrValueNotFound) {
			return value
		}
		panic(err)
	}
	return value
}
