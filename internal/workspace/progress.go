package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pablasso/specflow/internal/tasks"
)

// Event type constants for the per-feature progress log.
const (
	EventSessionStarted    = "session_started"
	EventTaskStarted       = "task_started"
	EventTaskCompleted     = "task_completed"
	EventTaskAutoCompleted = "task_auto_completed"
	EventTaskRemoved       = "task_removed"
)

// ProgressEvent represents a single progress log entry.
type ProgressEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Session   string         `json:"session"`
	Event     string         `json:"event"`
	Data      map[string]any `json:"data,omitempty"`
}

var _ tasks.Recorder = (*ProgressLogger)(nil)

// ProgressLogger appends task lifecycle events as JSON Lines to each
// feature's progress.log.
type ProgressLogger struct {
	ws      *Workspace
	session string
	now     func() time.Time
}

// NewProgressLogger creates a logger tagging every entry with sessionID.
func (w *Workspace) NewProgressLogger(sessionID string) *ProgressLogger {
	return &ProgressLogger{ws: w, session: sessionID, now: time.Now}
}

// Log appends an event to the feature's progress log.
func (p *ProgressLogger) Log(feature, event string, data map[string]any) error {
	entry := ProgressEvent{
		Timestamp: p.now(),
		Session:   p.session,
		Event:     event,
		Data:      data,
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	jsonBytes = append(jsonBytes, '\n')

	if err := ensureDir(p.ws.FeatureDir(feature)); err != nil {
		return err
	}
	f, err := os.OpenFile(p.path(feature), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(jsonBytes)
	return err
}

// SessionStarted logs the start of a tracking session for feature.
func (p *ProgressLogger) SessionStarted(feature string) error {
	return p.Log(feature, EventSessionStarted, nil)
}

// TaskStarted logs a task_started event.
func (p *ProgressLogger) TaskStarted(feature string, index int, text string) error {
	return p.Log(feature, EventTaskStarted, taskData(index, text))
}

// TaskCompleted logs a task_completed event.
func (p *ProgressLogger) TaskCompleted(feature string, index int, text string) error {
	return p.Log(feature, EventTaskCompleted, taskData(index, text))
}

// TaskAutoCompleted logs a task completed by an external edit.
func (p *ProgressLogger) TaskAutoCompleted(feature string, index int, text string) error {
	return p.Log(feature, EventTaskAutoCompleted, taskData(index, text))
}

// TaskRemoved logs an active task whose checklist entry disappeared.
func (p *ProgressLogger) TaskRemoved(feature string, index int) error {
	return p.Log(feature, EventTaskRemoved, map[string]any{"task": index})
}

// ReadProgress returns the events logged for feature, oldest first.
// Malformed lines are skipped.
func (p *ProgressLogger) ReadProgress(feature string) ([]ProgressEvent, error) {
	data, err := os.ReadFile(p.path(feature))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var events []ProgressEvent
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var ev ProgressEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (p *ProgressLogger) path(feature string) string {
	return filepath.Join(p.ws.FeatureDir(feature), progressLogFileName)
}

func taskData(index int, text string) map[string]any {
	return map[string]any{
		"task":  index,
		"title": text,
	}
}
