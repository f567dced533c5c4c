package cli

import (
	"fmt"
	"path/filepath"

	"github.com/pablasso/specflow/internal/workspace"
)

// PrerequisiteError represents a failed prerequisite check with helpful remediation info.
type PrerequisiteError struct {
	Check   string
	Message string
	Help    string
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("%s: %s\n\n%s", e.Check, e.Message, e.Help)
}

// checkInitialized verifies the workspace has a .specflow directory.
func checkInitialized(ws *workspace.Workspace) error {
	if err := ws.RequireInitialized(); err != nil {
		return &PrerequisiteError{
			Check:   "Workspace",
			Message: fmt.Sprintf("specflow is not initialized in %s", ws.Root()),
			Help:    "Run 'specflow init' first.",
		}
	}
	return nil
}

// checkNoSession verifies no other interactive session holds the workspace.
func checkNoSession(ws *workspace.Workspace) error {
	locked, err := ws.NewSessionLock().IsLocked()
	if err != nil {
		return fmt.Errorf("failed to check session lock: %w", err)
	}
	if locked {
		return &PrerequisiteError{
			Check:   "Session",
			Message: "another specflow session is tracking this workspace",
			Help:    "Stop the running 'specflow watch' or TUI session first.",
		}
	}
	return nil
}

// resolve joins a config path to the workspace root unless it is absolute.
func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
