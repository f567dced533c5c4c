package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	deinitForce bool
)

var deinitCmd = &cobra.Command{
	Use:   "deinit",
	Short: "Remove specflow from the current repository",
	Long:  "Removes the .specflow/ folder including all feature specs and progress history. This action cannot be undone.",
	Args:  cobra.NoArgs,
	RunE:  runDeinit,
}

func init() {
	deinitCmd.Flags().BoolVarP(&deinitForce, "force", "f", false, "Skip confirmation prompt")
}

func runDeinit(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(os.Stderr)
	if err != nil {
		return err
	}

	dir := e.ws.Dir()
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("specflow is not initialized in this repository")
	}
	if err != nil {
		return fmt.Errorf("failed to check .specflow directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf(".specflow exists but is not a directory")
	}

	if err := checkNoSession(e.ws); err != nil {
		return err
	}

	featureCount, totalSize, err := calculateDirStats(dir, e.ws.SpecsDir())
	if err != nil {
		return fmt.Errorf("failed to analyze .specflow/: %w", err)
	}

	out := stdout(cmd)
	if !deinitForce {
		fmt.Fprintf(out, "This will delete .specflow/ (%d features, %s). Continue? [y/N] ", featureCount, formatSize(totalSize))

		reader := bufio.NewReader(stdin(cmd))
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))

		if response != "y" && response != "yes" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove .specflow/: %w", err)
	}

	if err := removeFromGitignore(e.ws.Root(), gitignoreEntries...); err != nil {
		return fmt.Errorf("failed to update .gitignore: %w", err)
	}

	fmt.Fprintln(out, "specflow has been removed from this repository.")
	return nil
}

func calculateDirStats(dir, specsDir string) (featureCount int, totalSize int64, err error) {
	entries, readErr := os.ReadDir(specsDir)
	if readErr == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				featureCount++
			}
		}
	}

	err = filepath.Walk(dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	return
}

func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1fMB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1fKB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}
