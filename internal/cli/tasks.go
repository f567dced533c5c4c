package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/pablasso/specflow/internal/analysis"
	"github.com/pablasso/specflow/internal/tasks"
	"github.com/pablasso/specflow/internal/templates"
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect and complete a feature's task checklist",
}

var tasksListCmd = &cobra.Command{
	Use:   "list <feature>",
	Short: "List the checklist items of a feature",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksList,
}

var tasksDoneCmd = &cobra.Command{
	Use:   "done <feature> <number>",
	Short: "Mark a task complete",
	Long:  "Starts and completes the numbered task (as shown by 'specflow tasks list') in one step, rewriting its checkbox in tasks.md.",
	Args:  cobra.ExactArgs(2),
	RunE:  runTasksDone,
}

var tasksLogCmd = &cobra.Command{
	Use:   "log <feature>",
	Short: "Show the progress history of a feature",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksLog,
}

var tasksReportCmd = &cobra.Command{
	Use:   "report <feature>",
	Short: "Summarize how each task went and suggest improvements",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksReport,
}

var tasksPromptCmd = &cobra.Command{
	Use:   "prompt <feature> [number]",
	Short: "Print the agent prompt for implementing a task",
	Long:  "Renders the implement-task prompt for the numbered task, or the first pending task when no number is given. Customized prompts in the templates directory take precedence.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runTasksPrompt,
}

func init() {
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksPromptCmd)
	tasksCmd.AddCommand(tasksDoneCmd)
	tasksCmd.AddCommand(tasksLogCmd)
	tasksCmd.AddCommand(tasksReportCmd)
}

func runTasksList(cmd *cobra.Command, args []string) error {
	e, err := loadInitializedEnv(os.Stderr)
	if err != nil {
		return err
	}
	feature, err := e.ws.FindFeature(args[0])
	if err != nil {
		return err
	}

	text, err := e.ws.ReadDocument(feature)
	if err != nil {
		if errors.Is(err, tasks.ErrDocumentNotFound) {
			return fmt.Errorf("feature %s has no %s yet", feature, e.ws.DocumentPath(feature))
		}
		return err
	}

	items := tasks.Parse(text)
	out := stdout(cmd)
	if len(items) > 0 {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tSTATUS\tTASK")
		for _, item := range items {
			status := string(tasks.StatusPending)
			if item.Completed {
				status = string(tasks.StatusCompleted)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", item.Index+1, status, item.Text)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	p := tasks.Present(tasks.ComputeProgress(items, feature, nil))
	fmt.Fprintln(out, p.SummaryText)
	return nil
}

func runTasksDone(cmd *cobra.Command, args []string) error {
	e, err := loadInitializedEnv(os.Stderr)
	if err != nil {
		return err
	}
	feature, err := e.ws.FindFeature(args[0])
	if err != nil {
		return err
	}
	number, err := strconv.Atoi(args[1])
	if err != nil || number < 1 {
		return fmt.Errorf("invalid task number %q: use the number shown by 'specflow tasks list'", args[1])
	}

	recorder := e.ws.NewProgressLogger(uuid.NewString())
	rec := tasks.NewReconciler(e.ws, e.logger).WithRecorder(recorder)
	out := stdout(cmd)

	started, err := rec.StartTask(feature, number-1)
	if err != nil {
		return err
	}
	switch started {
	case tasks.Started:
	case tasks.StartRefusedCompleted:
		fmt.Fprintf(out, "Task %d of %s is already completed.\n", number, feature)
		return nil
	case tasks.StartRefusedOutOfRange:
		return fmt.Errorf("feature %s has no task %d", feature, number)
	default:
		return fmt.Errorf("feature %s has no %s yet", feature, e.ws.DocumentPath(feature))
	}

	completed, err := rec.CompleteActiveTask()
	if err != nil {
		return err
	}
	if err := completed.Err(); err != nil {
		return fmt.Errorf("could not complete task %d of %s: %w", number, feature, err)
	}

	p, err := rec.PresentedProgress()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Completed task %d of %s\n%s\n", number, feature, p.SummaryText)
	return nil
}

func runTasksPrompt(cmd *cobra.Command, args []string) error {
	e, err := loadInitializedEnv(os.Stderr)
	if err != nil {
		return err
	}
	feature, err := e.ws.FindFeature(args[0])
	if err != nil {
		return err
	}

	text, err := e.ws.ReadDocument(feature)
	if err != nil {
		if errors.Is(err, tasks.ErrDocumentNotFound) {
			return fmt.Errorf("feature %s has no %s yet", feature, e.ws.DocumentPath(feature))
		}
		return err
	}
	items := tasks.Parse(text)

	var item *tasks.Item
	if len(args) == 2 {
		number, err := strconv.Atoi(args[1])
		if err != nil || number < 1 {
			return fmt.Errorf("invalid task number %q: use the number shown by 'specflow tasks list'", args[1])
		}
		if number > len(items) {
			return fmt.Errorf("feature %s has no task %d", feature, number)
		}
		item = &items[number-1]
	} else {
		for i := range items {
			if !items[i].Completed {
				item = &items[i]
				break
			}
		}
		if item == nil {
			fmt.Fprintf(stdout(cmd), "All tasks of %s are completed.\n", feature)
			return nil
		}
	}

	dir, err := filepath.Rel(e.ws.Root(), e.ws.FeatureDir(feature))
	if err != nil {
		dir = e.ws.FeatureDir(feature)
	}
	prompt, err := e.renderer().Prompt("implement-task", templates.PromptData{
		Feature:    feature,
		Dir:        filepath.ToSlash(dir),
		TaskNumber: item.Index + 1,
		Task:       item.Text,
	})
	if err != nil {
		return err
	}
	fmt.Fprint(stdout(cmd), prompt)
	return nil
}

func runTasksLog(cmd *cobra.Command, args []string) error {
	e, err := loadInitializedEnv(os.Stderr)
	if err != nil {
		return err
	}
	feature, err := e.ws.FindFeature(args[0])
	if err != nil {
		return err
	}

	events, err := e.ws.NewProgressLogger("").ReadProgress(feature)
	if err != nil {
		return fmt.Errorf("failed to read progress for %s: %w", feature, err)
	}

	out := stdout(cmd)
	if len(events) == 0 {
		fmt.Fprintf(out, "No progress recorded for %s.\n", feature)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tEVENT\tTASK\tSESSION")
	for _, ev := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			formatAge(ev.Timestamp, time.Now()),
			ev.Event,
			eventTask(ev.Data),
			shortSession(ev.Session),
		)
	}
	return w.Flush()
}

func runTasksReport(cmd *cobra.Command, args []string) error {
	e, err := loadInitializedEnv(os.Stderr)
	if err != nil {
		return err
	}
	feature, err := e.ws.FindFeature(args[0])
	if err != nil {
		return err
	}

	text, err := e.ws.ReadDocument(feature)
	if err != nil && !errors.Is(err, tasks.ErrDocumentNotFound) {
		return err
	}
	events, err := e.ws.NewProgressLogger("").ReadProgress(feature)
	if err != nil {
		return fmt.Errorf("failed to read progress for %s: %w", feature, err)
	}

	items := tasks.Parse(text)
	analyzer := analysis.NewAnalyzer(items, events)
	out := stdout(cmd)

	fmt.Fprintln(out, tasks.Present(tasks.ComputeProgress(items, feature, nil)).SummaryText)
	if len(items) > 0 {
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tSTATUS\tSTARTS\tDURATION\tTASK")
		for _, s := range analyzer.Stats() {
			status := string(tasks.StatusPending)
			if s.Completed {
				status = string(tasks.StatusCompleted)
			}
			duration := "-"
			if d := s.Duration(); d > 0 {
				duration = d.Round(time.Second).String()
			}
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", s.Index+1, status, s.Starts, duration, s.Text)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if report := analysis.FormatSuggestions(analyzer.Analyze()); report != "" {
		fmt.Fprintln(out)
		fmt.Fprint(out, report)
	}
	return nil
}

// eventTask renders the task number and text carried by a progress event.
func eventTask(data map[string]any) string {
	index, ok := data["task"].(float64) // JSON numbers decode as float64
	if !ok {
		return "-"
	}
	text, ok := data["title"].(string)
	if !ok {
		return fmt.Sprintf("%d.", int(index)+1)
	}
	return fmt.Sprintf("%d. %s", int(index)+1, text)
}

func shortSession(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatAge returns a human-readable relative time string.
func formatAge(t, now time.Time) string {
	duration := now.Sub(t)

	if duration < time.Minute {
		return "just now"
	}

	minutes := int(duration.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}

	hours := int(duration.Hours())
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}

	days := hours / 24
	return fmt.Sprintf("%dd ago", days)
}
