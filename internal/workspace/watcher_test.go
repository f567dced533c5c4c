package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitForSaved(t *testing.T, w *Watcher, timeout time.Duration) (SavedEvent, bool) {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev, true
	case <-time.After(timeout):
		return SavedEvent{}, false
	}
}

func TestWatcher_EmitsOnTasksWrite(t *testing.T) {
	ws := newTestWorkspace(t, map[string]string{"auth": "- [ ] Login\n"})

	w, err := ws.Watch(0, nil)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(ws.DocumentPath("auth"), []byte("- [x] Login\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	ev, ok := waitForSaved(t, w, 2*time.Second)
	if !ok {
		t.Fatal("timed out waiting for saved event")
	}
	if ev.Feature != "auth" {
		t.Errorf("Feature = %q, want auth", ev.Feature)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	ws := newTestWorkspace(t, map[string]string{"auth": "- [ ] Login\n"})

	w, err := ws.Watch(0, nil)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(ws.FeatureDir("auth"), "design.md"), []byte("# D"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if ev, ok := waitForSaved(t, w, 300*time.Millisecond); ok {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	ws := newTestWorkspace(t, map[string]string{"auth": "- [ ] Login\n"})

	w, err := ws.Watch(150*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(ws.DocumentPath("auth"), []byte("- [ ] Login\n"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	if _, ok := waitForSaved(t, w, 2*time.Second); !ok {
		t.Fatal("timed out waiting for debounced event")
	}
	if ev, ok := waitForSaved(t, w, 400*time.Millisecond); ok {
		t.Errorf("burst should coalesce into one event, got extra %+v", ev)
	}
}

func TestWatcher_PicksUpNewFeature(t *testing.T) {
	ws := New(t.TempDir(), "")

	w, err := ws.Watch(0, nil)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	if err := os.MkdirAll(ws.FeatureDir("billing"), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	// Give the watcher a moment to register the new directory
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(ws.DocumentPath("billing"), []byte("- [ ] Invoice\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	ev, ok := waitForSaved(t, w, 2*time.Second)
	if !ok {
		t.Fatal("timed out waiting for saved event")
	}
	if ev.Feature != "billing" {
		t.Errorf("Feature = %q, want billing", ev.Feature)
	}
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	ws := New(t.TempDir(), "")
	w, err := ws.Watch(0, nil)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	select {
	case <-w.Done():
	default:
		t.Error("Done should be closed")
	}
}
