package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/pablasso/specflow/internal/workspace"
)

func TestPrerequisiteError_Error(t *testing.T) {
	err := &PrerequisiteError{
		Check:   "Workspace",
		Message: "not initialized",
		Help:    "Run 'specflow init' first.",
	}

	expected := "Workspace: not initialized\n\nRun 'specflow init' first."
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestCheckNoSession(t *testing.T) {
	root := t.TempDir()
	ws := workspace.New(root, "")
	if err := os.MkdirAll(ws.Dir(), 0755); err != nil {
		t.Fatal(err)
	}

	if err := checkNoSession(ws); err != nil {
		t.Fatalf("expected no session, got %v", err)
	}

	lockPath := filepath.Join(ws.Dir(), workspace.LockFileName)
	if err := os.WriteFile(lockPath, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		t.Fatal(err)
	}

	var prereq *PrerequisiteError
	if err := checkNoSession(ws); !errors.As(err, &prereq) {
		t.Fatalf("expected PrerequisiteError, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		root, path, expected string
	}{
		{"/repo", ".specflow/templates", "/repo/.specflow/templates"},
		{"/repo", "/opt/templates", "/opt/templates"},
	}

	for _, tt := range tests {
		if got := resolve(tt.root, tt.path); got != tt.expected {
			t.Errorf("resolve(%q, %q) = %q, want %q", tt.root, tt.path, got, tt.expected)
		}
	}
}
