package tui

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pablasso/specflow/internal/tasks"
	"github.com/pablasso/specflow/internal/tui/msgs"
	"github.com/pablasso/specflow/internal/workspace"
)

// fakeWorkspace is an in-memory workspace with tasks documents only.
type fakeWorkspace struct {
	mu   sync.Mutex
	docs map[string]string
}

func (w *fakeWorkspace) ReadDocument(feature string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	text, ok := w.docs[feature]
	if !ok {
		return "", fmt.Errorf("%s: %w", feature, tasks.ErrDocumentNotFound)
	}
	return text, nil
}

func (w *fakeWorkspace) WriteDocumentLine(feature string, line int, expected, text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	lines := strings.Split(w.docs[feature], "\n")
	if lines[line] != expected {
		return fmt.Errorf("line %d: %w", line, tasks.ErrDocumentChanged)
	}
	lines[line] = text
	w.docs[feature] = strings.Join(lines, "\n")
	return nil
}

func (w *fakeWorkspace) ListFeatures() ([]workspace.FeatureSummary, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []workspace.FeatureSummary
	for _, name := range []string{"auth", "billing"} {
		text, ok := w.docs[name]
		if !ok {
			continue
		}
		items := tasks.Parse(text)
		out = append(out, workspace.FeatureSummary{
			Name:      name,
			Stage:     workspace.StageTasks,
			Total:     len(items),
			Completed: tasks.CountCompleted(items),
		})
	}
	return out, nil
}

func (w *fakeWorkspace) set(feature, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.docs[feature] = text
}

// fakeSaves is a SaveSource driven by the test.
type fakeSaves struct {
	events chan workspace.SavedEvent
	errors chan error
	done   chan struct{}
}

func newFakeSaves() *fakeSaves {
	return &fakeSaves{
		events: make(chan workspace.SavedEvent, 1),
		errors: make(chan error, 1),
		done:   make(chan struct{}),
	}
}

func (s *fakeSaves) Events() <-chan workspace.SavedEvent { return s.events }
func (s *fakeSaves) Errors() <-chan error                { return s.errors }
func (s *fakeSaves) Done() <-chan struct{}               { return s.done }

func newTestModel(t *testing.T) (Model, *fakeWorkspace, *tasks.Reconciler, *fakeSaves) {
	t.Helper()
	ws := &fakeWorkspace{docs: map[string]string{
		"auth":    "- [ ] one\n- [ ] two\n",
		"billing": "- [x] done\n",
	}}
	rec := tasks.NewReconciler(ws, nil)
	saves := newFakeSaves()
	m := NewModel(Options{Workspace: ws, Reconciler: rec, Saves: saves})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model), ws, rec, saves
}

// step feeds msg into the model.
func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestModel_View_TerminalTooSmall(t *testing.T) {
	tests := []struct {
		name        string
		width       int
		height      int
		expectSmall bool
	}{
		{"exactly minimum size", MinTerminalWidth, MinTerminalHeight, false},
		{"width too small", MinTerminalWidth - 1, MinTerminalHeight, true},
		{"height too small", MinTerminalWidth, MinTerminalHeight - 1, true},
		{"both dimensions too small", MinTerminalWidth - 10, MinTerminalHeight - 5, true},
		{"larger than minimum", 100, 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _, _ := newTestModel(t)
			m, _ = step(t, m, tea.WindowSizeMsg{Width: tt.width, Height: tt.height})

			view := m.View()

			if tt.expectSmall {
				for _, want := range []string{"Terminal too small", "Minimum:", "Current:"} {
					if !strings.Contains(view, want) {
						t.Errorf("expected view to contain %q", want)
					}
				}
			} else if strings.Contains(view, "Terminal too small") {
				t.Error("did not expect view to contain 'Terminal too small'")
			}
		})
	}
}

func TestModel_renderTerminalTooSmall_ShowsDimensions(t *testing.T) {
	m, _, _, _ := newTestModel(t)
	m.width = 50
	m.height = 10

	view := m.renderTerminalTooSmall()

	if !strings.Contains(view, "60x15") {
		t.Error("expected minimum dimensions 60x15 to be shown")
	}
	if !strings.Contains(view, "50x10") {
		t.Error("expected current dimensions 50x10 to be shown")
	}
}

func TestModel_OpenFeatureAndBack(t *testing.T) {
	m, _, _, _ := newTestModel(t)

	m, cmd := step(t, m, msgs.OpenFeatureMsg{Feature: "auth"})
	if m.CurrentView() != ViewTaskBoard {
		t.Fatalf("expected task board, got %v", m.CurrentView())
	}
	if cmd == nil {
		t.Error("expected board init command")
	}

	m, _ = step(t, m, msgs.GoToFeatureListMsg{})
	if m.CurrentView() != ViewFeatureList {
		t.Errorf("expected feature list, got %v", m.CurrentView())
	}
}

func TestModel_SaveOnOtherFeatureReconciles(t *testing.T) {
	m, ws, rec, _ := newTestModel(t)
	if _, err := rec.StartTask("auth", 0); err != nil {
		t.Fatalf("StartTask: %v", err)
	}

	// Task checked off in an editor while the feature list is shown
	ws.set("auth", "- [x] one\n- [ ] two\n")

	m, cmd := step(t, m, msgs.DocumentSavedMsg{Feature: "auth"})
	if cmd == nil {
		t.Fatal("expected commands")
	}
	// Run the reconcile directly; the batch also holds the blocking listener.
	m, _ = step(t, m, m.reconcile("auth")())

	if _, ok := rec.Active(); ok {
		t.Error("expected active task cleared by reconcile")
	}
	if got := m.featureList.Features()[0].Completed; got != 1 {
		t.Errorf("expected list reloaded with 1 completed, got %d", got)
	}
}

func TestModel_ListenForSaves(t *testing.T) {
	m, _, _, saves := newTestModel(t)

	saves.events <- workspace.SavedEvent{Feature: "auth"}
	if msg, ok := m.listenForSaves()().(msgs.DocumentSavedMsg); !ok || msg.Feature != "auth" {
		t.Errorf("expected DocumentSavedMsg for auth, got %#v", msg)
	}

	saves.errors <- errors.New("watch failed")
	if _, ok := m.listenForSaves()().(msgs.WatchErrorMsg); !ok {
		t.Error("expected WatchErrorMsg")
	}

	close(saves.done)
	if msg := m.listenForSaves()(); msg != nil {
		t.Errorf("expected nil after done, got %#v", msg)
	}
}

func TestModel_WatchErrorShown(t *testing.T) {
	m, _, _, _ := newTestModel(t)

	m, _ = step(t, m, msgs.WatchErrorMsg{Err: errors.New("too many open files")})

	if !strings.Contains(m.View(), "too many open files") {
		t.Error("expected watcher error in view")
	}
}

func TestModel_SaveOnBoardFeatureRefreshesBoard(t *testing.T) {
	m, ws, _, _ := newTestModel(t)
	m, _ = step(t, m, msgs.OpenFeatureMsg{Feature: "auth"})

	ws.set("auth", "- [x] one\n- [x] two\n")
	m, _ = step(t, m, msgs.DocumentSavedMsg{Feature: "auth"})
	m, _ = step(t, m, m.taskBoard.Refresh("Document saved")())

	if got := m.taskBoard.Snapshot().CompletedTasks; got != 2 {
		t.Errorf("expected board refreshed with 2 completed, got %d", got)
	}
	if !strings.Contains(m.View(), "2/2 tasks (100%)") {
		t.Error("expected refreshed progress in view")
	}
}

func TestModel_WithoutSaveSource(t *testing.T) {
	ws := &fakeWorkspace{docs: map[string]string{}}
	m := NewModel(Options{Workspace: ws, Reconciler: tasks.NewReconciler(ws, nil)})

	if m.Init() != nil {
		t.Error("expected no listener without a save source")
	}
}

func TestModel_InitialFeatureOpensBoard(t *testing.T) {
	ws := &fakeWorkspace{docs: map[string]string{"auth": "- [ ] one\n"}}
	m := NewModel(Options{Workspace: ws, Reconciler: tasks.NewReconciler(ws, nil), Feature: "auth"})

	if m.Init() == nil {
		t.Fatal("expected init command")
	}

	m, _ = step(t, m, msgs.OpenFeatureMsg{Feature: "auth"})
	if m.CurrentView() != ViewTaskBoard || m.taskBoard.Feature() != "auth" {
		t.Errorf("expected auth board, got view %v feature %q", m.CurrentView(), m.taskBoard.Feature())
	}
}
