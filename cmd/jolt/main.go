package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/reusee/dscope"
	"github.com/reusee/jolt/cmds"
	"github.com/reusee/jolt/configs"
	"github.com/reusee/jolt/debugs"
	"github.com/reusee/jolt/joltconfigs"
	"github.com/reusee/jolt/joltlang"
	"github.com/reusee/jolt/joltsyntax"
	"github.com/reusee/jolt/modes"
	"golang.org/x/term"
)

var (
	runPath    = cmds.Var[string]("run", "run a source file")
	checkPath  = cmds.Var[string]("check", "check a source file without running it")
	tokensPath = cmds.Var[string]("tokens", "print the tokens of a source file")
	astPath    = cmds.Var[string]("ast", "print the syntax tree of a source file as yaml")
	evalSource = cmds.Var[string]("eval", "run the argument as source")
	loadPaths  = cmds.Collect[string]("load", "run a source file into the session first, may be repeated")
	forceREPL  = cmds.Switch("repl", "start the REPL even when stdin is not a terminal")
	tapAfter   = cmds.Switch("-tap", "open a starlark REPL over the globals before exiting")
)

type configAction uint8

const (
	configNone configAction = iota
	configShow
	configFiles
)

var showConfig configAction

func init() {
	cmds.Define("config", cmds.Sub(map[string]*cmds.Command{
		"show": cmds.Func(func() {
			showConfig = configShow
		}).Desc("print the resolved settings as yaml"),
		"files": cmds.Func(func() {
			showConfig = configFiles
		}).Desc("print the loaded configuration files"),
	}).Desc("inspect the configuration"))
}

func main() {
	cmds.Execute(os.Args[1:])

	ctx := context.Background()
	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	)
	scope, err := joltlang.ConfigScriptFork(ctx, scope, joltlang.ConfigScriptPaths())
	if err != nil {
		fmt.Fprintf(os.Stderr, "config script: %v\n", err)
		os.Exit(1)
	}
	if err := loadConfigs(scope); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if showConfig != configNone {
		os.Exit(printConfig(scope, showConfig))
	}

	var code int
	scope.Call(func(
		driver *Driver,
		tap debugs.Tap,
		prompt joltconfigs.Prompt,
		historyFile joltconfigs.HistoryFile,
	) {
		code = execute(ctx, driver, *loadPaths, func() error {
			return driver.REPL(ctx, string(prompt), string(historyFile))
		})
		if *tapAfter {
			tap(ctx, "globals", driver.Globals())
		}
	})
	os.Exit(code)
}

// loadConfigs reads the cue files before any setting is resolved from them.
func loadConfigs(scope dscope.Scope) (err error) {
	scope.Call(func(
		loader configs.Loader,
	) {
		_, err = loader.Files()
	})
	return
}

func printConfig(scope dscope.Scope, action configAction) int {
	var err error
	scope.Call(func(
		driver *Driver,
		settings Settings,
	) {
		switch action {
		case configShow:
			err = driver.Config(settings)
		case configFiles:
			err = driver.ConfigFiles(settings)
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	return 0
}

func execute(ctx context.Context, driver *Driver, loads []string, repl func() error) int {
	for _, path := range loads {
		if err := withSource(path, func(source *joltsyntax.Source) error {
			return driver.Load(ctx, source)
		}); err != nil {
			return 1
		}
	}

	var err error
	switch {

	case *evalSource != "":
		err = driver.RunInterruptible(ctx, joltsyntax.NewSource("<eval>", *evalSource))

	case *runPath != "":
		err = withSource(*runPath, func(source *joltsyntax.Source) error {
			return driver.RunInterruptible(ctx, source)
		})

	case *checkPath != "":
		err = withSource(*checkPath, func(source *joltsyntax.Source) error {
			return driver.Check(ctx, source)
		})

	case *tokensPath != "":
		err = withSource(*tokensPath, driver.Tokens)

	case *astPath != "":
		err = withSource(*astPath, driver.AST)

	case *forceREPL || term.IsTerminal(int(os.Stdin.Fd())):
		err = repl()
		if err != nil {
			fmt.Fprintf(os.Stderr, "repl: %v\n", err)
		}

	default:
		var content []byte
		content, err = io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read stdin: %v\n", err)
			break
		}
		err = driver.RunInterruptible(ctx, joltsyntax.NewSource("<stdin>", string(content)))

	}

	if err != nil {
		return 1
	}
	return 0
}

func withSource(path string, fn func(*joltsyntax.Source) error) error {
	source, err := readSource(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return fn(source)
}
