package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAddToGitignore(t *testing.T) {
	tests := []struct {
		name     string
		existing *string
		entry    string
		expected string
	}{
		{"creates gitignore if not exists", nil, "test-entry", "test-entry\n"},
		{"appends to existing gitignore", ptr("existing-entry\n"), "new-entry", "existing-entry\nnew-entry\n"},
		{"adds newline if file doesn't end with one", ptr("no-trailing-newline"), "new-entry", "no-trailing-newline\nnew-entry\n"},
		{"skips if entry already exists", ptr("existing-entry\n"), "existing-entry", "existing-entry\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			path := filepath.Join(root, ".gitignore")
			if tt.existing != nil {
				os.WriteFile(path, []byte(*tt.existing), 0644)
			}

			if err := addToGitignore(root, tt.entry); err != nil {
				t.Fatalf("addToGitignore failed: %v", err)
			}

			content, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("failed to read .gitignore: %v", err)
			}
			if string(content) != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, string(content))
			}
		})
	}
}

func TestRemoveFromGitignore(t *testing.T) {
	t.Run("removes entry from gitignore", func(t *testing.T) {
		root := t.TempDir()
		path := filepath.Join(root, ".gitignore")
		os.WriteFile(path, []byte("keep-me\nremove-me\nalso-keep\n"), 0644)

		if err := removeFromGitignore(root, "remove-me"); err != nil {
			t.Fatalf("removeFromGitignore failed: %v", err)
		}

		content, _ := os.ReadFile(path)
		expected := "keep-me\nalso-keep\n"
		if string(content) != expected {
			t.Errorf("expected %q, got %q", expected, string(content))
		}
	})

	t.Run("does nothing if gitignore doesn't exist", func(t *testing.T) {
		if err := removeFromGitignore(t.TempDir(), "any-entry"); err != nil {
			t.Fatalf("removeFromGitignore should not fail: %v", err)
		}
	})

	t.Run("leaves gitignore if only the entry would remain", func(t *testing.T) {
		root := t.TempDir()
		path := filepath.Join(root, ".gitignore")
		os.WriteFile(path, []byte("only-entry\n"), 0644)

		if err := removeFromGitignore(root, "only-entry"); err != nil {
			t.Fatalf("removeFromGitignore failed: %v", err)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected .gitignore to still exist: %v", err)
		}
		if string(content) != "only-entry\n" {
			t.Errorf("expected unchanged content when result would be empty, got %q", string(content))
		}
	})
}

func ptr(s string) *string { return &s }

func TestRemoveFromGitignore_MultipleEntries(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ".gitignore")
	os.WriteFile(path, []byte("node_modules\n.specflow/session.lock\n.specflow/specflow.log\n"), 0644)

	if err := removeFromGitignore(root, ".specflow/session.lock", ".specflow/specflow.log"); err != nil {
		t.Fatalf("removeFromGitignore failed: %v", err)
	}

	content, _ := os.ReadFile(path)
	if string(content) != "node_modules\n" {
		t.Errorf("expected only node_modules left, got %q", string(content))
	}
}
