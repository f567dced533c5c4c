package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/pablasso/specflow/internal/tasks"
	"github.com/pablasso/specflow/internal/workspace"
	"github.com/spf13/cobra"
)

var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "Create and list feature specs",
}

var specNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Scaffold a new feature spec",
	Long:  "Creates requirements.md, design.md and tasks.md for a new feature from the workspace templates. The name is converted to kebab-case.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSpecNew,
}

var specListCmd = &cobra.Command{
	Use:   "list",
	Short: "List feature specs with their stage and task progress",
	Args:  cobra.NoArgs,
	RunE:  runSpecList,
}

func init() {
	specCmd.AddCommand(specNewCmd)
	specCmd.AddCommand(specListCmd)
}

func runSpecNew(cmd *cobra.Command, args []string) error {
	e, err := loadInitializedEnv(os.Stderr)
	if err != nil {
		return err
	}

	name, err := e.ws.CreateFeature(strings.Join(args, " "), e.renderer())
	if err != nil {
		return err
	}
	e.logger.Info("feature created", "feature", name)

	out := stdout(cmd)
	rel, err := filepath.Rel(e.ws.Root(), e.ws.FeatureDir(name))
	if err != nil {
		rel = e.ws.FeatureDir(name)
	}
	fmt.Fprintf(out, "Created feature %s in %s\n", name, rel)
	for _, stage := range workspace.Stages {
		fmt.Fprintf(out, "  %s\n", filepath.Join(rel, stage.FileName()))
	}
	if !e.installer().IsInstalled() {
		fmt.Fprintln(out, "Some templates are missing; run 'specflow templates sync' to restore them.")
	}
	return nil
}

func runSpecList(cmd *cobra.Command, args []string) error {
	e, err := loadInitializedEnv(os.Stderr)
	if err != nil {
		return err
	}

	features, err := e.ws.ListFeatures()
	if err != nil {
		return fmt.Errorf("failed to list features: %w", err)
	}

	out := stdout(cmd)
	if len(features) == 0 {
		fmt.Fprintln(out, "No features yet. Run 'specflow spec new <name>' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FEATURE\tSTAGE\tPROGRESS")
	for _, f := range features {
		stage := string(f.Stage)
		if stage == "" {
			stage = "-"
		}
		p := tasks.Present(tasks.Snapshot{Feature: f.Name, TotalTasks: f.Total, CompletedTasks: f.Completed})
		fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, stage, p.SummaryText)
	}
	return w.Flush()
}
