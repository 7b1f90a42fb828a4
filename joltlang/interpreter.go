package joltlang

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/reusee/jolt/joltconfigs"
	"github.com/reusee/jolt/joltsyntax"
	"github.com/reusee/jolt/logs"
	"github.com/samber/lo"
)

// Output receives printed expression statement values.
type Output io.Writer

func (Module) Output() Output {
	return os.Stdout
}

// Interpreter runs sources one after another against one Memory, so names
// declared by an earlier run are visible to later ones.
type Interpreter struct {
	memory      *Memory
	runtime     *Runtime
	logger      logs.Logger
	newSpan     logs.NewSpan
	staticCheck bool
}

type NewInterpreter func() *Interpreter

func (Module) NewInterpreter(
	logger logs.Logger,
	newSpan logs.NewSpan,
	output Output,
	printResults joltconfigs.PrintResults,
	staticCheck joltconfigs.StaticCheck,
) NewInterpreter {
	return func() *Interpreter {
		memory := NewMemory()
		var w io.Writer
		if printResults {
			w = output
		}
		return &Interpreter{
			memory:      memory,
			runtime:     NewRuntime(memory, w),
			logger:      logger,
			newSpan:     newSpan,
			staticCheck: bool(staticCheck),
		}
	}
}

func (i *Interpreter) Memory() *Memory {
	return i.memory
}

// Run parses and executes source. Language errors are *joltsyntax.Error.
// A failed run leaves the declarations made before the failure in place.
func (i *Interpreter) Run(ctx context.Context, source *joltsyntax.Source) (Value, error) {
	ctx, _ = i.newSpan(ctx, "", "source", source.Name)

	program, err := i.parse(ctx, source)
	if err != nil {
		return nil, err
	}

	if i.staticCheck {
		if err := i.check(ctx, source, program); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	value, err := i.runtime.Run(ctx, program)
	i.logger.DebugContext(ctx, "run finished",
		"source", source.Name,
		"elapsed", time.Since(start),
		"ok", err == nil,
	)
	if err != nil {
		if _, ok := joltsyntax.AsError(err); !ok {
			err = logs.WrapSpan(ctx, err)
		}
		return nil, err
	}
	return value, nil
}

// Check parses source and reports static errors without running it. The
// returned error joins every diagnostic, see joltsyntax.Errors.
func (i *Interpreter) Check(ctx context.Context, source *joltsyntax.Source) error {
	ctx, _ = i.newSpan(ctx, "", "source", source.Name)
	program, err := i.parse(ctx, source)
	if err != nil {
		return err
	}
	return i.check(ctx, source, program)
}

func (i *Interpreter) parse(ctx context.Context, source *joltsyntax.Source) (*joltsyntax.Program, error) {
	program, err := joltsyntax.Parse(source)
	if err != nil {
		return nil, err
	}
	i.logger.DebugContext(ctx, "parse finished",
		"source", source.Name,
		"statements", len(program.Stmts),
	)
	return program, nil
}

func (i *Interpreter) check(ctx context.Context, source *joltsyntax.Source, program *joltsyntax.Program) error {
	errs := Check(program, i.memory)
	i.logger.DebugContext(ctx, "check finished",
		"source", source.Name,
		"errors", len(errs),
	)
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(lo.Map(errs, func(e *joltsyntax.Error, _ int) error {
		return e
	})...)
}
