package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pablasso/specflow/internal/tasks"
	"github.com/pablasso/specflow/internal/tui/msgs"
	"github.com/pablasso/specflow/internal/tui/styles"
	"github.com/pablasso/specflow/internal/tui/views"
	"github.com/pablasso/specflow/internal/workspace"
)

// Minimum terminal dimensions for the TUI.
const (
	MinTerminalWidth  = 60
	MinTerminalHeight = 15
)

// View represents the different screens in the TUI.
type View int

const (
	ViewFeatureList View = iota
	ViewTaskBoard
)

// Workspace is the feature store the TUI browses. Task documents are read
// through the reconciler.
type Workspace interface {
	views.FeatureLister
}

// SaveSource delivers document save events, typically a *workspace.Watcher.
type SaveSource interface {
	Events() <-chan workspace.SavedEvent
	Errors() <-chan error
	Done() <-chan struct{}
}

// Options configures the TUI.
type Options struct {
	Workspace  Workspace
	Reconciler *tasks.Reconciler
	Saves      SaveSource // optional
	Feature    string     // open this feature's board on start
}

// reconciledMsg is sent after a save event was reconciled outside the board.
type reconciledMsg struct {
	Feature string
	Err     error
}

// Model is the main Bubble Tea model that orchestrates all views.
type Model struct {
	currentView View
	width       int
	height      int

	ws         Workspace
	reconciler *tasks.Reconciler
	saves      SaveSource
	initial    string

	featureList views.FeatureListModel
	taskBoard   views.TaskBoardModel

	err error // last watcher or reconcile failure
}

// Run starts the TUI application.
func Run(opts Options) error {
	p := tea.NewProgram(
		NewModel(opts),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}

// NewModel creates the root model starting on the feature list.
func NewModel(opts Options) Model {
	m := Model{
		currentView: ViewFeatureList,
		ws:          opts.Workspace,
		reconciler:  opts.Reconciler,
		saves:       opts.Saves,
		initial:     opts.Feature,
		featureList: views.NewFeatureListModel(opts.Workspace),
	}
	m.markActive()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.initial == "" {
		return m.listenForSaves()
	}
	feature := m.initial
	return tea.Batch(
		m.listenForSaves(),
		func() tea.Msg { return msgs.OpenFeatureMsg{Feature: feature} },
	)
}

// listenForSaves returns a command that waits for the next save event.
func (m Model) listenForSaves() tea.Cmd {
	if m.saves == nil {
		return nil
	}
	saves := m.saves
	return func() tea.Msg {
		select {
		case ev := <-saves.Events():
			return msgs.DocumentSavedMsg{Feature: ev.Feature}
		case err := <-saves.Errors():
			return msgs.WatchErrorMsg{Err: err}
		case <-saves.Done():
			return nil
		}
	}
}

// reconcile returns a command that reconciles a feature not shown on the board.
func (m Model) reconcile(feature string) tea.Cmd {
	rec := m.reconciler
	return func() tea.Msg {
		_, err := rec.Reconcile(feature)
		return reconciledMsg{Feature: feature, Err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.featureList.SetSize(msg.Width, msg.Height)
		m.taskBoard.SetSize(msg.Width, msg.Height)
		return m, nil

	case msgs.OpenFeatureMsg:
		m.taskBoard = views.NewTaskBoardModel(msg.Feature, m.reconciler)
		m.taskBoard.SetSize(m.width, m.height)
		m.currentView = ViewTaskBoard
		return m, m.taskBoard.Init()

	case msgs.GoToFeatureListMsg:
		m.featureList.Reload()
		m.markActive()
		m.currentView = ViewFeatureList
		return m, nil

	case msgs.DocumentSavedMsg:
		m.err = nil
		next := m.listenForSaves()
		if m.currentView == ViewTaskBoard && m.taskBoard.Feature() == msg.Feature {
			return m, tea.Batch(next, m.taskBoard.Refresh("Document saved"))
		}
		return m, tea.Batch(next, m.reconcile(msg.Feature))

	case msgs.WatchErrorMsg:
		m.err = msg.Err
		return m, m.listenForSaves()

	case reconciledMsg:
		if msg.Err != nil {
			m.err = msg.Err
		}
		m.featureList.Reload()
		m.markActive()
		return m, nil
	}

	var cmd tea.Cmd
	switch m.currentView {
	case ViewFeatureList:
		m.featureList, cmd = m.featureList.Update(msg)
	case ViewTaskBoard:
		m.taskBoard, cmd = m.taskBoard.Update(msg)
	}
	return m, cmd
}

// markActive highlights the feature holding the active task.
func (m *Model) markActive() {
	if m.reconciler == nil {
		return
	}
	active, ok := m.reconciler.Active()
	if !ok {
		m.featureList.SetActive("")
		return
	}
	m.featureList.SetActive(active.Feature)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width > 0 && (m.width < MinTerminalWidth || m.height < MinTerminalHeight) {
		return m.renderTerminalTooSmall()
	}

	var view string
	switch m.currentView {
	case ViewTaskBoard:
		view = m.taskBoard.View()
	default:
		view = m.featureList.View()
	}

	if m.err != nil {
		view = styles.ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n" + view
	}
	return view
}

func (m Model) renderTerminalTooSmall() string {
	msg := fmt.Sprintf("Terminal too small\n\nMinimum: %dx%d\nCurrent: %dx%d",
		MinTerminalWidth, MinTerminalHeight, m.width, m.height)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
}

// CurrentView returns the active screen.
func (m Model) CurrentView() View {
	return m.currentView
}
