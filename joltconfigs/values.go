package joltconfigs

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/reusee/jolt/cmds"
	"github.com/reusee/jolt/configs"
	"github.com/reusee/jolt/vars"
)

// each value is resolved from its flag, then configuration scripts, then cue files

// lookup returns the first script or cue value of name.
func lookup[T any](loader configs.Loader, script configs.ScriptValues, name string) (T, bool) {
	v, ok, err := configs.FromScript[T](script, name)
	if err != nil {
		panic(err)
	}
	if ok {
		return v, true
	}
	_, err = loader.AssignFirst(name, &v)
	if err == nil {
		return v, true
	}
	if !errors.Is(err, configs.ErrValueNotFound) {
		panic(err)
	}
	return v, false
}

// PrintResults enables printing the value of every expression statement.
type PrintResults bool

var _ configs.Configurable = PrintResults(false)

func (PrintResults) ConfigName() string {
	return "print_results"
}

var printResultsFlag = flagSwitch("-print", "print the value of every expression statement")

func (Module) PrintResults(
	loader configs.Loader,
	script configs.ScriptValues,
) PrintResults {
	if printResultsFlag.set {
		return PrintResults(printResultsFlag.value)
	}
	if v, ok := lookup[bool](loader, script, "print_results"); ok {
		return PrintResults(v)
	}
	return true
}

// ShowElapsed enables reporting the result and elapsed time of each run.
type ShowElapsed bool

var _ configs.Configurable = ShowElapsed(false)

func (ShowElapsed) ConfigName() string {
	return "show_elapsed"
}

var showElapsedFlag = flagSwitch("-elapsed", "report the result and elapsed time of each run")

func (Module) ShowElapsed(
	loader configs.Loader,
	script configs.ScriptValues,
) ShowElapsed {
	if showElapsedFlag.set {
		return ShowElapsed(showElapsedFlag.value)
	}
	if v, ok := lookup[bool](loader, script, "show_elapsed"); ok {
		return ShowElapsed(v)
	}
	return true
}

// StaticCheck enables the static checker before each run.
type StaticCheck bool

var _ configs.Configurable = StaticCheck(false)

func (StaticCheck) ConfigName() string {
	return "static_check"
}

var staticCheckFlag = flagSwitch("-check", "check programs statically before running them")

func (Module) StaticCheck(
	loader configs.Loader,
	script configs.ScriptValues,
) StaticCheck {
	if staticCheckFlag.set {
		return StaticCheck(staticCheckFlag.value)
	}
	v, _ := lookup[bool](loader, script, "static_check")
	return StaticCheck(v)
}

// Timeout bounds the wall clock time of one run. Zero means no limit.
type Timeout time.Duration

var _ configs.Configurable = Timeout(0)

func (Timeout) ConfigName() string {
	return "timeout"
}

func (t Timeout) String() string {
	return time.Duration(t).String()
}

func (t *Timeout) UnmarshalText(text []byte) error {
	d, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*t = Timeout(d)
	return nil
}

var timeoutFlag = cmds.Var[time.Duration]("-timeout", "stop a run after the duration")

func (Module) Timeout(
	loader configs.Loader,
	script configs.ScriptValues,
) Timeout {
	if d := vars.DerefOrZero(timeoutFlag); d != 0 {
		return Timeout(d)
	}
	v, ok, err := configs.FromScript[Timeout](script, "timeout")
	if err != nil {
		panic(err)
	}
	if ok {
		return v
	}
	var timeout Timeout
	if str := configs.First[string](loader, "timeout"); str != "" {
		if err := timeout.UnmarshalText([]byte(str)); err != nil {
			panic(err)
		}
	}
	return timeout
}

// HistoryFile is where the REPL keeps its input history.
type HistoryFile string

var _ configs.Configurable = HistoryFile("")

func (HistoryFile) ConfigName() string {
	return "history_file"
}

var historyFileFlag = cmds.Var[string]("-history", "file to keep REPL history in")

func (Module) HistoryFile(
	loader configs.Loader,
	script configs.ScriptValues,
) HistoryFile {
	v, _ := lookup[string](loader, script, "history_file")
	path := vars.FirstNonZero(vars.DerefOrZero(historyFileFlag), v)
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".jolt_history")
		}
	}
	return HistoryFile(path)
}

// Prompt is the REPL prompt.
type Prompt string

var _ configs.Configurable = Prompt("")

func (Prompt) ConfigName() string {
	return "prompt"
}

var promptFlag = cmds.Var[string]("-prompt", "REPL prompt")

func (Module) Prompt(
	loader configs.Loader,
	script configs.ScriptValues,
) Prompt {
	v, _ := lookup[string](loader, script, "prompt")
	return Prompt(vars.FirstNonZero(vars.DerefOrZero(promptFlag), v, "jolt> "))
}

type switchFlag struct {
	set   bool
	value bool
}

// flagSwitch defines name and !name, remembering whether either was given.
func flagSwitch(name string, desc string) *switchFlag {
	flag := new(switchFlag)
	cmds.Define(name, cmds.Func(func() {
		flag.set = true
		flag.value = true
	}).Desc(desc))
	cmds.Define("!"+name, cmds.Func(func() {
		flag.set = true
		flag.value = false
	}).Hide())
	return flag
}
