package main

import (
	"flag"
	"fmt"
	"io"
	"slices"

	"github.com/pablasso/specflow/internal/cli"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

type parseResult struct {
	Options     cli.TUIOptions
	ShowVersion bool
	RouteCLI    bool // args name a subcommand, ask for help or are not TUI flags
}

func parseArgs(args []string) (parseResult, error) {
	if len(args) == 0 {
		return parseResult{}, nil
	}

	fs := flag.NewFlagSet("specflow", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	feature := fs.String("feature", "", "Open this feature's task board on start")
	level := fs.String("log-level", "", "Log level: debug|info|warn|error")
	format := fs.String("log-format", "", "Log format: text|json")
	showVersion := fs.Bool("version", false, "Show version information")
	showVersionShort := fs.Bool("v", false, "Show version information")

	// Unknown flags and -h are reported by the CLI with full usage
	if err := fs.Parse(args); err != nil {
		return parseResult{RouteCLI: true}, nil
	}
	if fs.NArg() > 0 {
		return parseResult{RouteCLI: true}, nil
	}

	if *showVersion || *showVersionShort {
		return parseResult{ShowVersion: true}, nil
	}

	if *level != "" && !slices.Contains(validLogLevels, *level) {
		return parseResult{}, fmt.Errorf("invalid --log-level %q (want debug|info|warn|error)", *level)
	}
	if *format != "" && *format != "text" && *format != "json" {
		return parseResult{}, fmt.Errorf("invalid --log-format %q (want text|json)", *format)
	}

	return parseResult{
		Options: cli.TUIOptions{
			Feature:   *feature,
			LogLevel:  *level,
			LogFormat: *format,
		},
	}, nil
}
