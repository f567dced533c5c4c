package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pablasso/specflow/internal/config"
	"github.com/pablasso/specflow/internal/templates"
	"github.com/pablasso/specflow/internal/workspace"
	"github.com/spf13/cobra"
)

// gitignoreEntries are machine-local files under .specflow/.
var gitignoreEntries = []string{
	workspace.DirName + "/" + workspace.LockFileName,
	workspace.DirName + "/" + logFileName,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize specflow in the current repository",
	Long:  "Creates a .specflow/ folder with a default config, the specs directory and a copy of the bundled templates and prompts.",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(os.Stderr)
	if err != nil {
		return err
	}

	if e.ws.IsInitialized() {
		return fmt.Errorf("specflow is already initialized in this repository")
	}
	if _, err := os.Stat(e.ws.Dir()); err == nil {
		return fmt.Errorf(".specflow exists but is not a directory")
	}

	dirs := []string{e.ws.Dir(), e.ws.SpecsDir()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if err := config.Save(e.ws.Root(), e.cfg); err != nil {
		return err
	}

	result, err := e.installer().Mirror(templates.MirrorOptions{})
	if err != nil {
		return fmt.Errorf("failed to install templates: %w", err)
	}

	for _, entry := range gitignoreEntries {
		if err := addToGitignore(e.ws.Root(), entry); err != nil {
			return fmt.Errorf("failed to update .gitignore: %w", err)
		}
	}

	out := stdout(cmd)
	rel, _ := filepath.Rel(e.ws.Root(), e.ws.Dir())
	fmt.Fprintln(out, "Initialized specflow in", rel)
	fmt.Fprintf(out, "Installed %d template files into %s\n", len(result.Written), e.cfg.TemplatesDir)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Run: specflow spec new <feature name>")
	fmt.Fprintln(out, "  2. Fill in requirements.md, design.md and tasks.md")
	fmt.Fprintln(out, "  3. Run: specflow (or specflow watch <feature>) to track tasks")
	return nil
}
