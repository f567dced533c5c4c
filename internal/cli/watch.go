package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/pablasso/specflow/internal/display"
	"github.com/pablasso/specflow/internal/log"
	"github.com/pablasso/specflow/internal/tasks"
	"github.com/pablasso/specflow/internal/workspace"
	"github.com/spf13/cobra"
)

var watchStart int

var watchCmd = &cobra.Command{
	Use:   "watch <feature>",
	Short: "Track a feature's tasks while you implement them",
	Long: `Holds the workspace session and shows the feature's progress on a live status line.
Every save of tasks.md is reconciled: checking off the task being implemented ends it.
Use --start to mark a task as being implemented. Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchStart, "start", 0, "Task number to start implementing")
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := loadInitializedEnv(os.Stderr)
	if err != nil {
		return err
	}
	feature, err := e.ws.FindFeature(args[0])
	if err != nil {
		return err
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := newWatchSession(e.ws, feature, watcher, stdout(cmd), e.logger)
	return s.run(ctx, watchStart)
}

// watchSession reconciles one feature on every save and keeps the status
// line current.
type watchSession struct {
	feature    string
	saves      <-chan workspace.SavedEvent
	errs       <-chan error
	reconciler *tasks.Reconciler
	recorder   *workspace.ProgressLogger
	display    *display.Display
	logger     *log.Logger

	lastActive *tasks.ActiveTask
}

func newWatchSession(ws *workspace.Workspace, feature string, watcher *workspace.Watcher, out io.Writer, logger *log.Logger) *watchSession {
	recorder := ws.NewProgressLogger(uuid.NewString())
	return &watchSession{
		feature:    feature,
		saves:      watcher.Events(),
		errs:       watcher.Errors(),
		reconciler: tasks.NewReconciler(ws, logger).WithRecorder(recorder),
		recorder:   recorder,
		display:    display.New(out),
		logger:     logger.With("feature", feature),
	}
}

// run blocks until ctx is cancelled. start is a 1-based task number, 0 for none.
func (s *watchSession) run(ctx context.Context, start int) error {
	if err := s.recorder.SessionStarted(s.feature); err != nil {
		s.logger.WithError(err).Warn("failed to record session start")
	}

	s.display.Start()
	defer s.display.Stop()

	if start > 0 {
		result, err := s.reconciler.StartTask(s.feature, start-1)
		if err != nil {
			return err
		}
		if result != tasks.Started {
			s.display.PrintAbove("Task %d not started: %s", start, result)
		}
	}
	s.refresh()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-s.saves:
			if ev.Feature != s.feature {
				continue
			}
			s.logger.Debug("tasks document saved", "path", ev.Path)
			s.refresh()
		case err := <-s.errs:
			s.logger.WithError(err).Warn("file watcher error")
			s.display.PrintAbove("Watcher error: %v", err)
		}
	}
}

// refresh reconciles the feature and redraws the status line.
func (s *watchSession) refresh() {
	state, err := s.reconciler.ReconcileState(s.feature)
	if err != nil {
		s.display.PrintAbove("Failed to reconcile %s: %v", s.feature, err)
		return
	}
	snap, items := state.Snapshot, state.Items

	active, ok := s.reconciler.Active()
	if prev := s.lastActive; prev != nil && (!ok || active != *prev) {
		if prev.TaskIndex < len(items) && items[prev.TaskIndex].Completed {
			s.display.PrintAbove("✓ Task %d completed: %s", prev.TaskIndex+1, items[prev.TaskIndex].Text)
		} else {
			s.display.PrintAbove("Task %d is no longer active", prev.TaskIndex+1)
		}
	}
	s.lastActive = nil
	if ok {
		s.lastActive = &active
	}

	title := ""
	if i := snap.CurrentTaskIndex; i != nil && *i < len(items) {
		title = items[*i].Text
	}
	s.display.Update(s.feature, tasks.Present(snap), title)
}
