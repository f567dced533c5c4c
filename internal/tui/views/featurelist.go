package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pablasso/specflow/internal/tasks"
	"github.com/pablasso/specflow/internal/tui/components"
	"github.com/pablasso/specflow/internal/tui/msgs"
	"github.com/pablasso/specflow/internal/tui/styles"
	"github.com/pablasso/specflow/internal/workspace"
)

// FeatureLister lists the features of a workspace.
type FeatureLister interface {
	ListFeatures() ([]workspace.FeatureSummary, error)
}

// FeatureListModel is the model for the feature selection view.
type FeatureListModel struct {
	lister   FeatureLister
	features []workspace.FeatureSummary
	active   string // feature holding the active task, if any
	cursor   int
	err      error
	width    int
	height   int
}

// NewFeatureListModel creates a new FeatureListModel and loads the features.
func NewFeatureListModel(lister FeatureLister) FeatureListModel {
	m := FeatureListModel{lister: lister}
	m.Reload()
	return m
}

// Reload re-reads the feature list, keeping the cursor in range.
func (m *FeatureListModel) Reload() {
	m.features, m.err = m.lister.ListFeatures()
	if m.cursor >= len(m.features) {
		m.cursor = max(0, len(m.features)-1)
	}
}

// SetActive marks the feature that holds the active task.
func (m *FeatureListModel) SetActive(feature string) {
	m.active = feature
}

// Init implements tea.Model.
func (m FeatureListModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m FeatureListModel) Update(msg tea.Msg) (FeatureListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.Reload()
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.features)-1 {
				m.cursor++
			}
		case "enter":
			if m.cursor < len(m.features) {
				feature := m.features[m.cursor].Name
				return m, func() tea.Msg { return msgs.OpenFeatureMsg{Feature: feature} }
			}
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m FeatureListModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var lines []string
	var statusItems []string
	switch {
	case m.err != nil:
		lines = []string{styles.ErrorStyle.Render(fmt.Sprintf("Failed to load features: %v", m.err))}
		statusItems = []string{"r Retry", "q Quit"}
	case len(m.features) == 0:
		lines = []string{
			"No features found.",
			"",
			styles.SubtleStyle.Render("Run 'specflow spec new <name>' to create one, then press r."),
		}
		statusItems = []string{"r Refresh", "q Quit"}
	default:
		for i, f := range m.features {
			lines = append(lines, m.formatFeatureLine(i, f))
		}
		statusItems = []string{"↑↓ Navigate", "Enter Open", "r Refresh", "q Quit"}
	}

	return m.layout("Features", lines, statusItems)
}

// layout centers the title and body lines above the status bar.
func (m FeatureListModel) layout(title string, lines []string, statusItems []string) string {
	var b strings.Builder

	titleLine := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styles.TitleStyle.Render(title))

	statusBarHeight := 1
	contentHeight := 2 + len(lines) // title + spacing + lines
	availableHeight := m.height - statusBarHeight

	topPadding := max(0, (availableHeight-contentHeight)/3) // bias towards top

	b.WriteString(strings.Repeat("\n", topPadding))
	b.WriteString(titleLine)
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, strings.Join(lines, "\n")))

	bottomPadding := max(0, availableHeight-(topPadding+contentHeight))
	b.WriteString(strings.Repeat("\n", bottomPadding))

	b.WriteString(components.NewStatusBar().Render(m.width, statusItems))

	return b.String()
}

// formatFeatureLine formats a single feature line for display.
func (m FeatureListModel) formatFeatureLine(index int, f workspace.FeatureSummary) string {
	indicator := "○"
	if index == m.cursor {
		indicator = "●"
	}

	stage := string(f.Stage)
	if stage == "" {
		stage = "-"
	}

	summary := tasks.Present(tasks.Snapshot{
		Feature:        f.Name,
		TotalTasks:     f.Total,
		CompletedTasks: f.Completed,
	}).SummaryText
	if f.Name == m.active {
		summary += " *"
	}

	// Format: ● name       stage   bar summary
	bar := components.NewProgress(f.Completed, f.Total, 10).View()
	line := fmt.Sprintf("%s %-28s %-12s %-15s %s", indicator, f.Name, stage, bar, summary)

	switch {
	case index == m.cursor:
		line = styles.SelectedStyle.Render(line)
	case f.Name == m.active:
		line = styles.ActiveStyle.Render(line)
	case f.Total > 0 && f.Completed == f.Total:
		line = styles.SubtleStyle.Render(line)
	}

	return line
}

// SetSize updates the model dimensions.
func (m *FeatureListModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Features returns the loaded feature summaries.
func (m FeatureListModel) Features() []workspace.FeatureSummary {
	return m.features
}

// Cursor returns the current cursor position.
func (m FeatureListModel) Cursor() int {
	return m.cursor
}

// Err returns the last load error.
func (m FeatureListModel) Err() error {
	return m.err
}
