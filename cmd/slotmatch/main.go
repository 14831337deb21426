// Package main provides a CLI that schedules an event described in YAML.
//
// Usage:
//
//	slotmatch [-log-level warn] [-log-format text] [-output text|yaml] [-no-improve] [-validate] event.yaml
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hupe1980/slotmatch/internal/cli"
)

func main() {
	cfg, err := cli.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := cli.Run(cfg, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
