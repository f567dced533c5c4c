package views

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pablasso/specflow/internal/tasks"
	"github.com/pablasso/specflow/internal/workspace"
)

// memStore is an in-memory tasks document store.
type memStore struct {
	mu   sync.Mutex
	docs map[string]string
}

func newMemStore(docs map[string]string) *memStore {
	return &memStore{docs: docs}
}

func (s *memStore) ReadDocument(feature string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[feature]
	if !ok {
		return "", fmt.Errorf("%s: %w", feature, tasks.ErrDocumentNotFound)
	}
	return text, nil
}

func (s *memStore) WriteDocumentLine(feature string, line int, expected, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := strings.Split(s.docs[feature], "\n")
	if line < 0 || line >= len(lines) {
		return fmt.Errorf("line %d out of range", line)
	}
	if lines[line] != expected {
		return fmt.Errorf("line %d: %w", line, tasks.ErrDocumentChanged)
	}
	lines[line] = text
	s.docs[feature] = strings.Join(lines, "\n")
	return nil
}

func (s *memStore) get(feature string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[feature]
}

func (s *memStore) set(feature, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[feature] = text
}

// fakeLister returns a fixed feature list.
type fakeLister struct {
	features []workspace.FeatureSummary
	err      error
}

func (l *fakeLister) ListFeatures() ([]workspace.FeatureSummary, error) {
	return l.features, l.err
}
