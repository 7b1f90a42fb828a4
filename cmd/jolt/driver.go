package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/reusee/jolt/joltconfigs"
	"github.com/reusee/jolt/joltlang"
	"github.com/reusee/jolt/joltsyntax"
	"github.com/reusee/jolt/logs"
)

type Driver struct {
	interpreter *joltlang.Interpreter
	logger      logs.Logger
	stdout      io.Writer
	stderr      io.Writer
	showElapsed bool
	timeout     time.Duration
}

func (Module) Driver(
	newInterpreter joltlang.NewInterpreter,
	logger logs.Logger,
	output joltlang.Output,
	stderr Stderr,
	showElapsed joltconfigs.ShowElapsed,
	timeout joltconfigs.Timeout,
) *Driver {
	return &Driver{
		interpreter: newInterpreter(),
		logger:      logger,
		stdout:      output,
		stderr:      stderr,
		showElapsed: bool(showElapsed),
		timeout:     time.Duration(timeout),
	}
}

func readSource(path string) (*joltsyntax.Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, wrap(err)
	}
	return joltsyntax.NewSource(path, string(content)), nil
}

// Run interprets source and reports its value and elapsed time.
func (d *Driver) Run(ctx context.Context, source *joltsyntax.Source) error {
	value, elapsed, err := d.run(ctx, source)
	if err != nil {
		return err
	}
	if d.showElapsed {
		fmt.Fprintf(d.stdout, "=> %s (%v)\n", value, elapsed)
	}
	return nil
}

// RunInterruptible is Run with SIGINT stopping the run instead of the process.
func (d *Driver) RunInterruptible(ctx context.Context, source *joltsyntax.Source) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return d.Run(ctx, source)
}

// Load interprets source into the session without the result line.
func (d *Driver) Load(ctx context.Context, source *joltsyntax.Source) error {
	_, _, err := d.run(ctx, source)
	return err
}

func (d *Driver) run(ctx context.Context, source *joltsyntax.Source) (joltlang.Value, time.Duration, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	value, err := d.interpreter.Run(ctx, source)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("timeout exceeded after %v: %w", d.timeout, err)
		}
		d.report(source, err)
		return nil, elapsed, err
	}
	return value, elapsed, nil
}

// Check reports the static errors of source without running it.
func (d *Driver) Check(ctx context.Context, source *joltsyntax.Source) error {
	if err := d.interpreter.Check(ctx, source); err != nil {
		d.report(source, err)
		return err
	}
	fmt.Fprintf(d.stdout, "%s: ok\n", source.Name)
	return nil
}

// Tokens prints one line per token.
func (d *Driver) Tokens(source *joltsyntax.Source) error {
	for token, err := range joltsyntax.NewLexer(source).Tokens() {
		if err != nil {
			d.report(source, err)
			return err
		}
		fmt.Fprintf(d.stdout, "%s\t%s\n", token.Context, token)
	}
	return nil
}

// AST prints the syntax tree as YAML.
func (d *Driver) AST(source *joltsyntax.Source) error {
	program, err := joltsyntax.Parse(source)
	if err != nil {
		d.report(source, err)
		return err
	}
	out, err := joltsyntax.Dump(program)
	if err != nil {
		return err
	}
	_, err = d.stdout.Write(out)
	return err
}

func (d *Driver) report(source *joltsyntax.Source, err error) {
	diagnostics := joltsyntax.Errors(err)
	if len(diagnostics) == 0 {
		args := []any{
			"source", source.Name,
			"error", err,
		}
		if span, ok := logs.SpanOf(err); ok {
			args = append(args, "span", span)
		}
		d.logger.Error("run failed", args...)
		fmt.Fprintf(d.stderr, "error: %v\n", err)
		return
	}
	for _, e := range diagnostics {
		fmt.Fprint(d.stderr, e.Render(source))
	}
}

// Globals are the root names of the interpreter, for the tap.
func (d *Driver) Globals() map[string]any {
	ret := make(map[string]any)
	for name, record := range d.interpreter.Memory().Globals() {
		ret[name] = record
	}
	ret["jolt"] = func(src string) string {
		value, err := d.interpreter.Run(context.Background(), joltsyntax.NewSource("<tap>", src))
		if err != nil {
			return err.Error()
		}
		return value.String()
	}
	return ret
}
