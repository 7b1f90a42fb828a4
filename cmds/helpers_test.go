package cmds

import (
	"fmt"
	"testing"
	"time"
)

func TestVar(t *testing.T) {
	path := Var[string]("TestVar.path", "path")
	timeout := Var[time.Duration]("TestVar.timeout", "timeout")
	GlobalExecutor.MustExecute([]string{
		"TestVar.path", "main.jolt",
		"TestVar.timeout", "2s",
	})
	if *path != "main.jolt" {
		t.Fatalf("got %q", *path)
	}
	if *timeout != 2*time.Second {
		t.Fatalf("got %v", *timeout)
	}
	GlobalExecutor.MustExecute([]string{
		"TestVar.path.",
	})
	if *path != "" {
		t.Fatalf("got %q", *path)
	}
}

func TestSwitch(t *testing.T) {
	foo := Switch("TestSwitch", "switch")
	GlobalExecutor.MustExecute([]string{
		"TestSwitch",
	})
	if !*foo {
		t.Fatal("should be on")
	}
	GlobalExecutor.MustExecute([]string{
		"!TestSwitch",
	})
	if *foo {
		t.Fatal("should be off")
	}
}

func TestCollect(t *testing.T) {
	list := Collect[string]("TestCollect", "collect")
	GlobalExecutor.MustExecute([]string{
		"TestCollect", "a.jolt",
		"TestCollect", "b.jolt",
	})
	if str := fmt.Sprintf("%v", *list); str != "[a.jolt b.jolt]" {
		t.Fatalf("got %s", str)
	}
}

func TestTypedVar(t *testing.T) {
	type Prompt string
	v := Var[Prompt]("TestTypedVar", "typed")
	GlobalExecutor.MustExecute([]string{
		"TestTypedVar", "> ",
	})
	if *v != "> " {
		t.Fatalf("got %q", *v)
	}
}
