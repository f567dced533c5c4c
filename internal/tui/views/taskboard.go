package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pablasso/specflow/internal/tasks"
	"github.com/pablasso/specflow/internal/tui/components"
	"github.com/pablasso/specflow/internal/tui/msgs"
	"github.com/pablasso/specflow/internal/tui/styles"
)

// BoardRefreshedMsg carries the reconciled state of a feature's tasks.
type BoardRefreshedMsg struct {
	Feature  string
	Items    []tasks.Item
	Snapshot tasks.Snapshot
	Found    bool // the feature has a tasks document
	Notice   string
	Err      error
}

// TaskBoardModel shows the checklist of one feature and drives the
// reconciler: start, complete and refresh.
type TaskBoardModel struct {
	feature    string
	reconciler *tasks.Reconciler

	items    []tasks.Item
	missing  bool
	snapshot tasks.Snapshot
	loaded   bool
	cursor   int
	notice   string
	err      error
	spinner  spinner.Model
	width    int
	height   int
}

// NewTaskBoardModel creates a board for the given feature. The tasks are
// loaded by the command returned from Init.
func NewTaskBoardModel(feature string, reconciler *tasks.Reconciler) TaskBoardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.ActiveStyle

	return TaskBoardModel{
		feature:    feature,
		reconciler: reconciler,
		snapshot:   tasks.Snapshot{Feature: feature},
		spinner:    s,
	}
}

// Init implements tea.Model.
func (m TaskBoardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.Refresh(""))
}

// Refresh returns a command that reconciles the feature and reloads its tasks.
func (m TaskBoardModel) Refresh(notice string) tea.Cmd {
	feature, rec := m.feature, m.reconciler
	return func() tea.Msg {
		return reconcileBoard(feature, rec, notice)
	}
}

func reconcileBoard(feature string, rec *tasks.Reconciler, notice string) BoardRefreshedMsg {
	state, err := rec.ReconcileState(feature)
	return BoardRefreshedMsg{
		Feature:  feature,
		Items:    state.Items,
		Snapshot: state.Snapshot,
		Found:    state.Found,
		Notice:   notice,
		Err:      err,
	}
}

// startTask returns a command that starts the task at index.
func (m TaskBoardModel) startTask(index int) tea.Cmd {
	feature, rec := m.feature, m.reconciler
	return func() tea.Msg {
		result, err := rec.StartTask(feature, index)
		if err != nil {
			return reconcileBoard(feature, rec, fmt.Sprintf("Could not start task %d: %v", index+1, err))
		}
		return reconcileBoard(feature, rec, startNotice(result, index))
	}
}

// completeTask returns a command that completes the active task.
func (m TaskBoardModel) completeTask() tea.Cmd {
	feature, rec := m.feature, m.reconciler
	return func() tea.Msg {
		active, hadActive := rec.Active()
		result, err := rec.CompleteActiveTask()
		if err != nil {
			return reconcileBoard(feature, rec, fmt.Sprintf("Could not complete task: %v", err))
		}
		return reconcileBoard(feature, rec, completeNotice(result, active, hadActive))
	}
}

func startNotice(result tasks.StartResult, index int) string {
	switch result {
	case tasks.Started:
		return fmt.Sprintf("Implementing task %d", index+1)
	case tasks.StartRefusedCompleted:
		return fmt.Sprintf("Task %d is already completed", index+1)
	case tasks.StartRefusedOutOfRange:
		return fmt.Sprintf("Task %d no longer exists", index+1)
	default:
		return "Tasks document not found"
	}
}

func completeNotice(result tasks.CompleteResult, active tasks.ActiveTask, hadActive bool) string {
	switch result {
	case tasks.Completed:
		return fmt.Sprintf("Completed task %d of %s", active.TaskIndex+1, active.Feature)
	case tasks.CompletedExternally:
		return fmt.Sprintf("Task %d was already checked off", active.TaskIndex+1)
	case tasks.CompleteNoActiveTask:
		return "No task is being implemented"
	case tasks.CompleteOutOfRange:
		return fmt.Sprintf("Task %d no longer exists", active.TaskIndex+1)
	default:
		if hadActive {
			return fmt.Sprintf("Tasks document for %s not found", active.Feature)
		}
		return "Tasks document not found"
	}
}

// Update implements tea.Model.
func (m TaskBoardModel) Update(msg tea.Msg) (TaskBoardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case BoardRefreshedMsg:
		if msg.Feature != m.feature {
			return m, nil
		}
		m.loaded = true
		m.snapshot = msg.Snapshot
		m.notice = msg.Notice
		m.err = msg.Err
		if msg.Err == nil {
			m.items = msg.Items
			m.missing = !msg.Found
		}
		if m.cursor >= len(m.items) {
			m.cursor = max(0, len(m.items)-1)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}
	return m, nil
}

func (m TaskBoardModel) handleKeyPress(msg tea.KeyMsg) (TaskBoardModel, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc":
		return m, func() tea.Msg { return msgs.GoToFeatureListMsg{} }
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.items) {
			return m, m.startTask(m.items[m.cursor].Index)
		}
	case "c":
		return m, m.completeTask()
	case "r":
		return m, m.Refresh("Refreshed")
	}
	return m, nil
}

// View implements tea.Model.
func (m TaskBoardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	title := styles.TitleStyle.Render(m.feature)
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	b.WriteString("\n")

	presentation := tasks.Present(m.snapshot)
	header := components.ProgressFor(m.snapshot, 20).View()
	if header != "" {
		header += "  "
	}
	header += presentation.SummaryText
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styles.BoxStyle.Render(header)))
	b.WriteString("\n\n")

	// title + box (3 lines) + spacing + notice + status bar
	listHeight := max(1, m.height-8)
	b.WriteString(strings.Join(m.renderTaskList(listHeight), "\n"))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(styles.ErrorStyle.Render(m.err.Error()))
	case m.notice != "":
		b.WriteString(styles.SubtleStyle.Render(m.notice))
	}
	b.WriteString("\n")

	statusItems := []string{"↑↓ Navigate", "Enter Start", "c Complete", "r Refresh", "Esc Back"}
	b.WriteString(components.NewStatusBar().Render(m.width, statusItems))

	return b.String()
}

// renderTaskList renders at most maxLines task lines, scrolled so the
// cursor stays visible.
func (m TaskBoardModel) renderTaskList(maxLines int) []string {
	if !m.loaded {
		return []string{styles.SubtleStyle.Render("  Loading tasks...")}
	}
	if m.missing {
		return []string{styles.SubtleStyle.Render("  No tasks document for this feature.")}
	}
	if len(m.items) == 0 {
		return []string{styles.SubtleStyle.Render("  No checklist items found.")}
	}

	start := 0
	if m.cursor >= maxLines {
		start = m.cursor - maxLines + 1
	}
	end := min(len(m.items), start+maxLines)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.formatTaskLine(i, m.items[i]))
	}
	return lines
}

func (m TaskBoardModel) formatTaskLine(pos int, item tasks.Item) string {
	isActive := m.snapshot.CurrentTaskIndex != nil && *m.snapshot.CurrentTaskIndex == item.Index

	cursor := "  "
	if pos == m.cursor {
		cursor = "> "
	}

	text := fmt.Sprintf("%d. %s", item.Index+1, truncateWithEllipsis(item.Text, max(10, m.width-12)))
	indicator := taskIndicator(item, isActive, m.spinner.View())

	switch {
	case pos == m.cursor:
		text = styles.SelectedStyle.Render(text)
	case isActive:
		text = styles.ActiveStyle.Render(text)
	case item.Completed:
		text = styles.SubtleStyle.Render(text)
	}

	return cursor + indicator + " " + text
}

// taskIndicator returns the status indicator for a task.
func taskIndicator(item tasks.Item, isActive bool, spin string) string {
	switch {
	case item.Completed:
		return styles.SuccessStyle.Render("✓")
	case isActive:
		return spin
	default:
		return styles.SubtleStyle.Render("○")
	}
}

func truncateWithEllipsis(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// SetSize updates the model dimensions.
func (m *TaskBoardModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Feature returns the feature shown on the board.
func (m TaskBoardModel) Feature() string {
	return m.feature
}

// Items returns the parsed checklist items.
func (m TaskBoardModel) Items() []tasks.Item {
	return m.items
}

// Snapshot returns the last reconciled progress snapshot.
func (m TaskBoardModel) Snapshot() tasks.Snapshot {
	return m.snapshot
}

// Cursor returns the current cursor position.
func (m TaskBoardModel) Cursor() int {
	return m.cursor
}

// Notice returns the last action message.
func (m TaskBoardModel) Notice() string {
	return m.notice
}
