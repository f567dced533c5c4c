package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pablasso/specflow/internal/tasks"
)

var _ tasks.Store = (*Workspace)(nil)

// ReadDocument returns the current content of a feature's tasks document.
// A missing document yields an error wrapping tasks.ErrDocumentNotFound.
func (w *Workspace) ReadDocument(feature string) (string, error) {
	data, err := os.ReadFile(w.DocumentPath(feature))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", feature, tasks.ErrDocumentNotFound)
		}
		return "", fmt.Errorf("failed to read %s: %w", TasksFile, err)
	}
	return string(data), nil
}

// WriteDocumentLine replaces a single line of a feature's tasks document if
// it still reads expected. The line ending of the replaced line and the rest
// of the file are preserved. A mismatch yields tasks.ErrDocumentChanged.
func (w *Workspace) WriteDocumentLine(feature string, line int, expected, text string) error {
	path := w.DocumentPath(feature)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", feature, tasks.ErrDocumentNotFound)
		}
		return fmt.Errorf("failed to stat %s: %w", TasksFile, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", TasksFile, err)
	}

	lines := strings.Split(string(data), "\n")
	// A trailing newline leaves an empty final element that is not a line
	count := len(lines)
	if strings.HasSuffix(string(data), "\n") {
		count--
	}
	if line < 0 || line >= count {
		return fmt.Errorf("line %d out of range (document has %d lines)", line, count)
	}

	if strings.TrimSuffix(lines[line], "\r") != strings.TrimRight(expected, "\r\n") {
		return fmt.Errorf("%s line %d: %w", feature, line, tasks.ErrDocumentChanged)
	}

	text = strings.TrimRight(text, "\r\n")
	if strings.HasSuffix(lines[line], "\r") {
		text += "\r"
	}
	lines[line] = text

	return writeFileAtomic(path, []byte(strings.Join(lines, "\n")), info.Mode().Perm())
}

// writeFileAtomic writes data to a temp file in the same directory and renames
// it over path.
func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	tmpPath := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())

	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// ensureDir creates dir and its parents.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(dir), err)
	}
	return nil
}
