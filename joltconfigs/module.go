package joltconfigs

import (
	"github.com/reusee/dscope"
	"github.com/reusee/jolt/configs"
	"github.com/reusee/jolt/logs"
)

type Module struct {
	dscope.Module
	Configs configs.Module
	Logs    logs.Module
}
