package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// addToGitignore appends entry to root/.gitignore unless already present.
func addToGitignore(root, entry string) error {
	path := filepath.Join(root, ".gitignore")

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == entry {
			return nil
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if len(data) > 0 && data[len(data)-1] != '\n' {
		if _, err := f.WriteString("\n"); err != nil {
			return err
		}
	}
	_, err = f.WriteString(entry + "\n")
	return err
}

// removeFromGitignore drops entries from root/.gitignore. A file that would
// become empty is left untouched.
func removeFromGitignore(root string, entries ...string) error {
	path := filepath.Join(root, ".gitignore")

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var kept []string
	removed := false
	for _, line := range strings.Split(strings.TrimSuffix(string(data), "\n"), "\n") {
		if slices.Contains(entries, strings.TrimSpace(line)) {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	if !removed || len(kept) == 0 {
		return nil
	}

	return os.WriteFile(path, []byte(strings.Join(kept, "\n")+"\n"), 0644)
}
