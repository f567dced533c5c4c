package cli

import (
	"fmt"
	"os"

	"github.com/pablasso/specflow/internal/templates"
	"github.com/spf13/cobra"
)

var templatesForce bool

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage the workspace copy of bundled templates and prompts",
}

var templatesSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror bundled templates and prompts into the workspace",
	Long:  "Copies bundled stage templates and agent prompts into the templates directory. Files you modified are kept unless --force is given.",
	Args:  cobra.NoArgs,
	RunE:  runTemplatesSync,
}

var templatesCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the mirrored templates so the bundled ones are used",
	Long:  "Deletes the files 'specflow templates sync' wrote, including ones you modified. Other files in the templates directory are kept.",
	Args:  cobra.NoArgs,
	RunE:  runTemplatesClean,
}

func init() {
	templatesSyncCmd.Flags().BoolVarP(&templatesForce, "force", "f", false, "Overwrite modified files")
	templatesCmd.AddCommand(templatesSyncCmd)
	templatesCmd.AddCommand(templatesCleanCmd)
}

func runTemplatesSync(cmd *cobra.Command, args []string) error {
	e, err := loadInitializedEnv(os.Stderr)
	if err != nil {
		return err
	}

	result, err := e.installer().Mirror(templates.MirrorOptions{Force: templatesForce})
	if err != nil {
		return fmt.Errorf("failed to sync templates: %w", err)
	}
	e.logger.Info("templates synced",
		"written", len(result.Written), "updated", len(result.Updated), "skipped", len(result.Skipped), "conflicts", len(result.Conflicts))

	out := stdout(cmd)
	for _, name := range result.Written {
		fmt.Fprintf(out, "  wrote     %s\n", name)
	}
	for _, name := range result.Updated {
		fmt.Fprintf(out, "  updated   %s\n", name)
	}
	for _, name := range result.Conflicts {
		fmt.Fprintf(out, "  modified  %s (kept)\n", name)
	}
	fmt.Fprintf(out, "%d written, %d updated, %d up to date, %d kept\n",
		len(result.Written), len(result.Updated), len(result.Skipped), len(result.Conflicts))
	if len(result.Conflicts) > 0 {
		fmt.Fprintln(out, "Run 'specflow templates sync --force' to overwrite modified files.")
	}
	return nil
}

func runTemplatesClean(cmd *cobra.Command, args []string) error {
	e, err := loadInitializedEnv(os.Stderr)
	if err != nil {
		return err
	}
	if err := e.installer().Uninstall(); err != nil {
		return fmt.Errorf("failed to clean templates: %w", err)
	}
	fmt.Fprintf(stdout(cmd), "Removed mirrored templates from %s\n", e.cfg.TemplatesDir)
	return nil
}
