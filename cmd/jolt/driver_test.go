package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/jolt/joltconfigs"
	"github.com/reusee/jolt/joltlang"
	"github.com/reusee/jolt/joltsyntax"
	"github.com/reusee/jolt/logs"
	"github.com/reusee/jolt/modes"
	"go.yaml.in/yaml/v3"
)

func testDriver(t *testing.T, defs ...any) (*Driver, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	var driver *Driver
	dscope.New(
		new(Module),
		modes.ForTest(t),
	).Fork(
		func() joltlang.Output {
			return stdout
		},
		func() Stderr {
			return stderr
		},
		func() logs.Writer {
			return io.Discard
		},
		func() joltconfigs.ConfigPaths {
			return nil
		},
		func() joltconfigs.ShowElapsed {
			return false
		},
	).Fork(defs...).Call(func(
		d *Driver,
	) {
		driver = d
	})
	return driver, stdout, stderr
}

func TestDriverRun(t *testing.T) {
	driver, stdout, stderr := testDriver(t)
	ctx := context.Background()

	if err := driver.Run(ctx, joltsyntax.NewSource("a", "let x = 2 + 3 * 4; x;")); err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "14\n" {
		t.Fatalf("got %q", stdout.String())
	}

	err := driver.Run(ctx, joltsyntax.NewSource("b", "x = 1;"))
	if err == nil {
		t.Fatal("should fail")
	}
	expected := `name error: cannot reassign constant "x"
  --> b:1:1
   | x = 1;
   | ^^^^^
`
	if stderr.String() != expected {
		t.Fatalf("got %q", stderr.String())
	}
}

func TestDriverShowElapsed(t *testing.T) {
	driver, stdout, _ := testDriver(t,
		func() joltconfigs.ShowElapsed {
			return true
		},
		func() joltconfigs.PrintResults {
			return false
		},
	)
	if err := driver.Run(context.Background(), joltsyntax.NewSource("a", `"ab" * 3;`)); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout.String(), "=> ababab (") {
		t.Fatalf("got %q", stdout.String())
	}
}

func TestDriverTimeout(t *testing.T) {
	driver, _, stderr := testDriver(t, func() joltconfigs.Timeout {
		return joltconfigs.Timeout(20 * time.Millisecond)
	})
	err := driver.Run(context.Background(), joltsyntax.NewSource("a", "loop {}"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(stderr.String(), "timeout exceeded") {
		t.Fatalf("got %q", stderr.String())
	}
}

func TestDriverCheck(t *testing.T) {
	driver, stdout, stderr := testDriver(t)
	ctx := context.Background()

	if err := driver.Check(ctx, joltsyntax.NewSource("ok.jolt", "var x = 1; x = x + 1;")); err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "ok.jolt: ok\n" {
		t.Fatalf("got %q", stdout.String())
	}

	if err := driver.Check(ctx, joltsyntax.NewSource("bad.jolt", "a;\nbreak;")); err == nil {
		t.Fatal("should fail")
	}
	out := stderr.String()
	if !strings.Contains(out, `name error: undeclared variable "a"`) ||
		!strings.Contains(out, "control flow error: break outside of a loop") ||
		!strings.Contains(out, "--> bad.jolt:2:1") {
		t.Fatalf("got %q", out)
	}
}

func TestDriverTokens(t *testing.T) {
	driver, stdout, _ := testDriver(t)
	if err := driver.Tokens(joltsyntax.NewSource("t", "let x;")); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %q", stdout.String())
	}
	if lines[0] != "t:1:1\tkeyword \"let\"" {
		t.Fatalf("got %q", lines[0])
	}
	if lines[3] != "t:1:7\tend of file" {
		t.Fatalf("got %q", lines[3])
	}
}

func TestDriverAST(t *testing.T) {
	driver, stdout, _ := testDriver(t)
	if err := driver.AST(joltsyntax.NewSource("t", "1 + 2;")); err != nil {
		t.Fatal(err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(stdout.Bytes(), &tree); err != nil {
		t.Fatal(err)
	}
	if tree["kind"] != "Program" {
		t.Fatalf("got %v", tree)
	}
}

func TestDriverGlobals(t *testing.T) {
	driver, _, _ := testDriver(t, func() joltconfigs.PrintResults {
		return false
	})
	if err := driver.Run(context.Background(), joltsyntax.NewSource("a", "var n = 1;")); err != nil {
		t.Fatal(err)
	}
	globals := driver.Globals()
	if _, ok := globals["n"]; !ok {
		t.Fatalf("got %v", globals)
	}
	eval := globals["jolt"].(func(string) string)
	if got := eval("n = n + 41; n;"); got != "42" {
		t.Fatalf("got %q", got)
	}
	if got := eval("nope;"); !strings.Contains(got, "undeclared") {
		t.Fatalf("got %q", got)
	}
}

func TestIncomplete(t *testing.T) {
	tests := []struct {
		src        string
		incomplete bool
	}{
		{"var x = 1;", false},
		{"loop {", true},
		{"if (x) { x = 1;", true},
		{`"abc`, true},
		{`"a{1 + `, true},
		{"/* comment", true},
		{"var x = 1", true},
		{"1 +", true},
		{"x +* y;", false},
		{"$", false},
	}
	for _, test := range tests {
		_, err := joltsyntax.Parse(joltsyntax.NewSource("", test.src))
		if got := incomplete(err); got != test.incomplete {
			t.Fatalf("%q: got %v (%v)", test.src, got, err)
		}
	}
}

func TestDriverConfig(t *testing.T) {
	driver, stdout, _ := testDriver(t)
	var settings Settings
	dscope.New(
		new(Module),
		modes.ForTest(t),
	).Fork(
		func() logs.Writer {
			return io.Discard
		},
		func() joltconfigs.Timeout {
			return joltconfigs.Timeout(3 * time.Second)
		},
		func() joltconfigs.Prompt {
			return "> "
		},
	).Call(func(s Settings) {
		settings = s
	})
	if err := driver.Config(settings); err != nil {
		t.Fatal(err)
	}

	var got Settings
	if err := yaml.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Timeout != "3s" || got.Prompt != "> " || len(got.Files) != 0 {
		t.Fatalf("got %+v", got)
	}
	if !got.PrintResults || got.StaticCheck {
		t.Fatalf("got %+v", got)
	}
}

func TestLoadConfigsReportsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jolt.cue")
	if err := os.WriteFile(path, []byte("promt: \"> \"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	scope := dscope.New(
		new(Module),
		modes.ForTest(t),
	).Fork(
		func() logs.Writer {
			return io.Discard
		},
		func() joltconfigs.ConfigPaths {
			return joltconfigs.ConfigPaths{path}
		},
	)
	err := loadConfigs(scope)
	if err == nil || !strings.HasPrefix(err.Error(), path+": ") {
		t.Fatalf("got %v", err)
	}

	good := filepath.Join(t.TempDir(), "jolt.cue")
	if err := os.WriteFile(good, []byte("prompt: \"> \"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	scope = scope.Fork(func() joltconfigs.ConfigPaths {
		return joltconfigs.ConfigPaths{good}
	})
	if err := loadConfigs(scope); err != nil {
		t.Fatal(err)
	}
	stdout := new(bytes.Buffer)
	scope.Fork(func() joltlang.Output {
		return stdout
	}).Call(func(
		driver *Driver,
		settings Settings,
	) {
		if err := driver.ConfigFiles(settings); err != nil {
			t.Fatal(err)
		}
	})
	if stdout.String() != good+"\n" {
		t.Fatalf("got %q", stdout.String())
	}
}

func TestDriverReportsSpan(t *testing.T) {
	logged := new(bytes.Buffer)
	driver, _, stderr := testDriver(t,
		func() logs.Writer {
			return logged
		},
		func() joltconfigs.Timeout {
			return joltconfigs.Timeout(10 * time.Millisecond)
		},
	)
	err := driver.Run(context.Background(), joltsyntax.NewSource("a", "loop {}"))
	span, ok := logs.SpanOf(err)
	if !ok || span == "" {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(stderr.String(), "interrupted at a:1:1") {
		t.Fatalf("got %q", stderr.String())
	}
	if logged.Len() > 0 && !strings.Contains(logged.String(), "span="+string(span)) {
		t.Fatalf("got %q", logged.String())
	}
}

func TestDriverRunInterruptible(t *testing.T) {
	driver, _, stderr := testDriver(t)
	go func() {
		time.Sleep(50 * time.Millisecond)
		process, err := os.FindProcess(os.Getpid())
		if err == nil {
			_ = process.Signal(os.Interrupt)
		}
	}()
	err := driver.RunInterruptible(context.Background(), joltsyntax.NewSource("a", "var n = 0; loop { n = n + 1; }"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(stderr.String(), "interrupted at a:1:12") {
		t.Fatalf("got %q", stderr.String())
	}

	// the session survives
	if err := driver.Run(context.Background(), joltsyntax.NewSource("b", "n > 0;")); err != nil {
		t.Fatal(err)
	}
}

func TestDriverLoad(t *testing.T) {
	driver, stdout, _ := testDriver(t,
		func() joltconfigs.ShowElapsed {
			return true
		},
		func() joltconfigs.PrintResults {
			return false
		},
	)
	ctx := context.Background()
	if err := driver.Load(ctx, joltsyntax.NewSource("lib.jolt", "let greeting = \"hi\";")); err != nil {
		t.Fatal(err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("got %q", stdout.String())
	}
	if err := driver.Run(ctx, joltsyntax.NewSource("main.jolt", "greeting + \"!\";")); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout.String(), "=> hi! (") {
		t.Fatalf("got %q", stdout.String())
	}
}
