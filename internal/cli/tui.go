package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pablasso/specflow/internal/tasks"
	"github.com/pablasso/specflow/internal/tui"
)

// logFileName receives diagnostics while the TUI owns the terminal.
const logFileName = "specflow.log"

// TUIOptions configures the interactive session started without a subcommand.
type TUIOptions struct {
	Feature   string // open this feature's task board directly
	LogLevel  string
	LogFormat string
}

// RunTUI runs the interactive terminal UI for the current workspace.
func RunTUI(opts TUIOptions) error {
	if opts.LogLevel != "" {
		logLevel = opts.LogLevel
	}
	if opts.LogFormat != "" {
		logFormat = opts.LogFormat
	}

	e, err := loadEnv(os.Stderr)
	if err != nil {
		return err
	}
	if err := checkInitialized(e.ws); err != nil {
		return err
	}

	// Logs must not draw over the alternate screen
	logFile, err := os.OpenFile(filepath.Join(e.ws.Dir(), logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	e.logger = newLogger(e.cfg, logFile)

	feature := ""
	if opts.Feature != "" {
		if feature, err = e.ws.FindFeature(opts.Feature); err != nil {
			return err
		}
	}

	lock := e.ws.NewSessionLock()
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	watcher, err := e.ws.Watch(e.cfg.Watch.Debounce, e.logger)
	if err != nil {
		return err
	}
	defer watcher.Close()

	recorder := e.ws.NewProgressLogger(uuid.NewString())
	if feature != "" {
		if err := recorder.SessionStarted(feature); err != nil {
			e.logger.WithError(err).Warn("failed to record session start")
		}
	}

	return tui.Run(tui.Options{
		Workspace:  e.ws,
		Reconciler: tasks.NewReconciler(e.ws, e.logger).WithRecorder(recorder),
		Saves:      watcher,
		Feature:    feature,
	})
}
