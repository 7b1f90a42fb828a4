package main

import (
	"io"
	"os"

	"github.com/reusee/dscope"
	"github.com/reusee/e5"
	"github.com/reusee/jolt/debugs"
	"github.com/reusee/jolt/joltlang"
)

type Module struct {
	dscope.Module
	Lang   joltlang.Module
	Debugs debugs.Module
}

var wrap = e5.Wrap.With(e5.WrapStacktrace)

// Stderr receives diagnostics.
type Stderr io.Writer

func (Module) Stderr() Stderr {
	return os.Stderr
}
