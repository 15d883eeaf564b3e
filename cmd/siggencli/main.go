package main

import (
	"github.com/robotalks/siggen/pkg/cli/sh"
	"github.com/robotalks/siggen/pkg/env"

	_ "github.com/robotalks/siggen/pkg/cli/cmds/siggen"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
