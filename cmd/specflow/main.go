package main

import (
	"fmt"
	"os"

	"github.com/pablasso/specflow/internal/cli"
	"github.com/pablasso/specflow/internal/version"
)

func main() {
	// Flags only (or nothing) launches the TUI; anything else routes to the CLI
	res, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	switch {
	case res.RouteCLI:
		if err := cli.Execute(); err != nil {
			os.Exit(1)
		}
	case res.ShowVersion:
		fmt.Println("specflow", version.String())
	default:
		if err := cli.RunTUI(res.Options); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}
