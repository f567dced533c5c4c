// Package workspace is the filesystem-backed store for feature spec documents.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pablasso/specflow/internal/git"
)

const (
	// DirName is the per-repository specflow directory.
	DirName = ".specflow"

	// DefaultSpecsDir is where feature folders live, relative to the root.
	DefaultSpecsDir = ".specflow/specs"

	// TasksFile is the checklist document of each feature.
	TasksFile = "tasks.md"

	progressLogFileName = "progress.log"
)

// Workspace locates feature documents under a root directory.
type Workspace struct {
	root     string
	specsDir string
}

// New creates a workspace rooted at root. specsDir may be relative to root;
// empty means DefaultSpecsDir.
func New(root, specsDir string) *Workspace {
	if specsDir == "" {
		specsDir = DefaultSpecsDir
	}
	if !filepath.IsAbs(specsDir) {
		specsDir = filepath.Join(root, specsDir)
	}
	return &Workspace{root: root, specsDir: specsDir}
}

// FindRoot returns the git top-level containing dir, or the nearest ancestor
// holding a .specflow directory, or dir itself.
func FindRoot(dir string) string {
	if top, err := git.TopLevel(dir); err == nil && top != "" {
		return top
	}

	for d := dir; ; {
		if info, err := os.Stat(filepath.Join(d, DirName)); err == nil && info.IsDir() {
			return d
		}
		parent := filepath.Dir(d)
		if parent == d {
			return dir
		}
		d = parent
	}
}

// Root returns the workspace root.
func (w *Workspace) Root() string {
	return w.root
}

// Dir returns the .specflow directory.
func (w *Workspace) Dir() string {
	return filepath.Join(w.root, DirName)
}

// SpecsDir returns the directory holding feature folders.
func (w *Workspace) SpecsDir() string {
	return w.specsDir
}

// FeatureDir returns the folder of a feature.
func (w *Workspace) FeatureDir(feature string) string {
	return filepath.Join(w.specsDir, feature)
}

// DocumentPath returns the tasks document path of a feature.
func (w *Workspace) DocumentPath(feature string) string {
	return filepath.Join(w.FeatureDir(feature), TasksFile)
}

// IsInitialized reports whether the .specflow directory exists.
func (w *Workspace) IsInitialized() bool {
	info, err := os.Stat(w.Dir())
	return err == nil && info.IsDir()
}

// RequireInitialized returns an error if the workspace is not initialized.
func (w *Workspace) RequireInitialized() error {
	if !w.IsInitialized() {
		return fmt.Errorf("specflow is not initialized. Run 'specflow init' first")
	}
	return nil
}
