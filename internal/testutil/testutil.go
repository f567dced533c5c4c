// Package testutil provides testing utilities for the specflow project.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// SetupTestDir creates a temp directory, resolves symlinks (for macOS),
// changes to it, and registers cleanup to restore the original working directory.
// Returns the resolved temp directory path.
func SetupTestDir(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	// Resolve symlinks for macOS (/var -> /private/var)
	if resolved, err := filepath.EvalSymlinks(tmpDir); err != nil {
		t.Logf("warning: could not resolve symlinks for temp dir: %v", err)
	} else {
		tmpDir = resolved
	}

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change to temp dir: %v", err)
	}

	t.Cleanup(func() {
		os.Chdir(originalWd)
	})

	return tmpDir
}

// SetupGitRepo is SetupTestDir plus `git init`, so the directory is its own
// workspace root. Without git installed the plain directory is used.
func SetupGitRepo(t *testing.T) string {
	t.Helper()

	dir := SetupTestDir(t)
	if _, err := exec.LookPath("git"); err != nil {
		return dir
	}
	if out, err := exec.Command("git", "init", "-q").CombinedOutput(); err != nil {
		t.Fatalf("failed to init git repo: %v\n%s", err, out)
	}
	return dir
}

// WriteFeatureDoc writes a document of a feature under root's default specs
// directory, creating the feature folder.
func WriteFeatureDoc(t *testing.T, root, feature, name, content string) string {
	t.Helper()

	dir := filepath.Join(root, ".specflow", "specs", feature)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create feature dir: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// ReadFile returns the content of path, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
