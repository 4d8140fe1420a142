// Package main provides a CLI for validating scenario objective
// definitions.
package main

import (
	"flag"
	"os"

	"github.com/louisbranch/emberfall/internal/platform/config"

	lintcmd "github.com/louisbranch/emberfall/internal/cmd/scenariolint"
)

func main() {
	cfg, err := lintcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	if err := lintcmd.Run(cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("Error: %v", err)
	}
}
