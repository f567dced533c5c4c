package cli

import (
	"github.com/pablasso/specflow/internal/version"
	"github.com/spf13/cobra"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:     "specflow",
	Short:   "Spec workflow tracker for feature development",
	Long:    `Specflow scaffolds requirements, design and tasks documents for each feature and tracks the task checklist as you implement it.`,
	Version: version.String(),

	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text|json (default from config)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(deinitCmd)
	rootCmd.AddCommand(specCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(watchCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
