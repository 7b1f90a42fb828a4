package joltlang

import (
	"github.com/reusee/dscope"
	"github.com/reusee/jolt/joltconfigs"
)

type Module struct {
	dscope.Module
	Configs joltconfigs.Module
}
