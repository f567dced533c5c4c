package tasks

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pablasso/specflow/internal/log"
)

var (
	// ErrDocumentNotFound is returned by a Store when a feature has no tasks document.
	ErrDocumentNotFound = errors.New("tasks document not found")

	// ErrNoActiveTask reports a complete request while no task is active.
	ErrNoActiveTask = errors.New("no active task")

	// ErrDocumentChanged is returned by a Store when the line to rewrite no
	// longer holds the expected content.
	ErrDocumentChanged = errors.New("tasks document changed")
)

// maxWriteAttempts bounds re-reads when the document changes under a completion.
const maxWriteAttempts = 3

// Store reads and writes feature task documents.
type Store interface {
	ReadDocument(feature string) (string, error)
	// WriteDocumentLine replaces line with text only if it still reads
	// expected (line endings ignored); otherwise it returns an error wrapping
	// ErrDocumentChanged and leaves the document untouched.
	WriteDocumentLine(feature string, line int, expected, text string) error
}

// Recorder receives task lifecycle events. Errors are logged and otherwise ignored.
type Recorder interface {
	TaskStarted(feature string, index int, text string) error
	TaskCompleted(feature string, index int, text string) error
	TaskAutoCompleted(feature string, index int, text string) error
	// TaskRemoved reports an active task whose checklist entry disappeared.
	TaskRemoved(feature string, index int) error
}

// FeatureState is the reconciled view of one feature, computed from a single
// read of its document.
type FeatureState struct {
	Snapshot Snapshot
	Items    []Item
	Found    bool // false when the feature has no tasks document
}

// StartResult describes the outcome of a start request.
type StartResult int

const (
	Started StartResult = iota
	StartRefusedCompleted
	StartRefusedOutOfRange
	StartRefusedNoDocument
)

func (r StartResult) String() string {
	switch r {
	case Started:
		return "started"
	case StartRefusedCompleted:
		return "task already completed"
	case StartRefusedOutOfRange:
		return "task index out of range"
	case StartRefusedNoDocument:
		return "tasks document not found"
	default:
		return "unknown"
	}
}

// CompleteResult describes the outcome of a complete request.
type CompleteResult int

const (
	Completed CompleteResult = iota
	CompletedExternally
	CompleteNoActiveTask
	CompleteNoDocument
	CompleteOutOfRange
)

func (r CompleteResult) String() string {
	switch r {
	case Completed:
		return "completed"
	case CompletedExternally:
		return "already completed in document"
	case CompleteNoActiveTask:
		return "no active task"
	case CompleteNoDocument:
		return "tasks document not found"
	case CompleteOutOfRange:
		return "task index out of range"
	default:
		return "unknown"
	}
}

// Err returns the sentinel error for a refused completion, or nil when the
// task ended up completed.
func (r CompleteResult) Err() error {
	switch r {
	case Completed, CompletedExternally:
		return nil
	case CompleteNoActiveTask:
		return ErrNoActiveTask
	case CompleteNoDocument:
		return ErrDocumentNotFound
	case CompleteOutOfRange:
		return ErrIndexOutOfRange
	default:
		return fmt.Errorf("unknown complete result %d", int(r))
	}
}

// Reconciler owns the process-wide active task and keeps it consistent with
// the tasks documents on disk. At most one task is active at a time; starting
// a task in another feature replaces the active one.
//
// Every method holds the reconciler lock for its whole duration, store I/O
// included, so each trigger observes and mutates state atomically.
type Reconciler struct {
	mu       sync.Mutex
	store    Store
	recorder Recorder
	logger   *log.Logger
	active   *ActiveTask
	focus    string
}

// NewReconciler creates an idle reconciler backed by store.
func NewReconciler(store Store, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.Nop()
	}
	return &Reconciler{
		store:  store,
		logger: logger.With("component", "reconciler"),
	}
}

// WithRecorder sets the lifecycle event recorder.
func (r *Reconciler) WithRecorder(rec Recorder) *Reconciler {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorder = rec
	return r
}

// Active returns a copy of the active task, if any.
func (r *Reconciler) Active() (ActiveTask, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return ActiveTask{}, false
	}
	return *r.active, true
}

// Focus returns the feature shown by PresentedProgress.
func (r *Reconciler) Focus() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.focusLocked()
}

func (r *Reconciler) focusLocked() string {
	if r.active != nil {
		return r.active.Feature
	}
	return r.focus
}

// StartTask makes task index of feature the active task. Refusals are reported
// through the result and leave the active task unchanged.
func (r *Reconciler) StartTask(feature string, index int) (StartResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger := r.logger.With("feature", feature, "task", index)

	items, err := r.load(feature)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			logger.Warn("start refused: tasks document not found")
			return StartRefusedNoDocument, nil
		}
		return 0, err
	}
	r.focus = feature

	if index < 0 || index >= len(items) {
		logger.Warn("start refused: index out of range", "tasks", len(items))
		return StartRefusedOutOfRange, nil
	}
	if items[index].Completed {
		logger.Warn("start refused: task already completed")
		return StartRefusedCompleted, nil
	}

	if r.active != nil && (r.active.Feature != feature || r.active.TaskIndex != index) {
		logger.Info("replacing active task", "previous_feature", r.active.Feature, "previous_task", r.active.TaskIndex)
	}
	r.active = &ActiveTask{Feature: feature, TaskIndex: index, Status: StatusImplementing}
	logger.Info("task started", "text", items[index].Text)
	r.record(func(rec Recorder) error { return rec.TaskStarted(feature, index, items[index].Text) })

	return Started, nil
}

// CompleteActiveTask marks the active task complete in its document and then
// clears the active task. If the write fails the active task is kept and the
// error is returned.
func (r *Reconciler) CompleteActiveTask() (CompleteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil {
		r.logger.Warn("complete requested with no active task")
		return CompleteNoActiveTask, nil
	}

	feature, index := r.active.Feature, r.active.TaskIndex
	logger := r.logger.With("feature", feature, "task", index)

	for attempt := 1; ; attempt++ {
		// Re-read so the line lookup reflects the document as it is now
		text, err := r.store.ReadDocument(feature)
		if err != nil {
			if errors.Is(err, ErrDocumentNotFound) {
				logger.Warn("complete skipped: tasks document not found")
				return CompleteNoDocument, nil
			}
			return 0, fmt.Errorf("failed to read tasks for %s: %w", feature, err)
		}

		items := Parse(text)
		if index >= len(items) {
			logger.Warn("complete skipped: index out of range", "tasks", len(items))
			return CompleteOutOfRange, nil
		}

		if items[index].Completed {
			r.active = nil
			logger.Info("task already completed in document")
			r.record(func(rec Recorder) error { return rec.TaskAutoCompleted(feature, index, items[index].Text) })
			return CompletedExternally, nil
		}

		lineNum, newLine, err := CompleteLine(text, index)
		if err != nil {
			logger.Warn("complete skipped", "error", err)
			return CompleteOutOfRange, nil
		}

		err = r.store.WriteDocumentLine(feature, lineNum, splitLines(text)[lineNum], newLine)
		if errors.Is(err, ErrDocumentChanged) && attempt < maxWriteAttempts {
			logger.Info("tasks document changed before write, retrying", "attempt", attempt)
			continue
		}
		if err != nil {
			logger.WithError(err).Error("failed to write completion marker")
			return 0, fmt.Errorf("failed to mark task %d complete: %w", index, err)
		}

		r.active = nil
		logger.Info("task completed", "text", items[index].Text)
		r.record(func(rec Recorder) error { return rec.TaskCompleted(feature, index, items[index].Text) })
		return Completed, nil
	}
}

// Reconcile re-reads the feature's document and clears the active task when the
// document already marks it complete. It returns a fresh snapshot computed
// from the reconciled state. A missing document is not an error. Safe to call
// from any trigger source.
func (r *Reconciler) Reconcile(feature string) (Snapshot, error) {
	state, err := r.ReconcileState(feature)
	return state.Snapshot, err
}

// ReconcileState is Reconcile that also returns the items it parsed.
func (r *Reconciler) ReconcileState(feature string) (FeatureState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reconcileLocked(feature)
}

// ProgressSnapshot reconciles feature and returns its progress.
func (r *Reconciler) ProgressSnapshot(feature string) (Snapshot, error) {
	return r.Reconcile(feature)
}

// PresentedProgress presents the progress of the focused feature: the active
// task's feature, otherwise the feature most recently reconciled or started.
func (r *Reconciler) PresentedProgress() (Presentation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	feature := r.focusLocked()
	if feature == "" {
		return Present(Snapshot{}), nil
	}

	state, err := r.reconcileLocked(feature)
	if err != nil {
		return Presentation{}, err
	}
	return Present(state.Snapshot), nil
}

func (r *Reconciler) reconcileLocked(feature string) (FeatureState, error) {
	r.focus = feature

	items, err := r.load(feature)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			r.logger.Warn("reconcile skipped: tasks document not found", "feature", feature)
			return FeatureState{Snapshot: ComputeProgress(nil, feature, nil)}, nil
		}
		return FeatureState{Snapshot: ComputeProgress(nil, feature, nil)}, err
	}

	if r.active != nil && r.active.Feature == feature {
		index := r.active.TaskIndex
		switch {
		case index >= len(items):
			r.logger.Warn("active task no longer exists, clearing", "feature", feature, "task", index, "tasks", len(items))
			r.active = nil
			r.record(func(rec Recorder) error { return rec.TaskRemoved(feature, index) })
		case items[index].Completed:
			r.logger.Info("active task completed externally", "feature", feature, "task", index)
			r.active = nil
			text := items[index].Text
			r.record(func(rec Recorder) error { return rec.TaskAutoCompleted(feature, index, text) })
		}
	}

	return FeatureState{
		Snapshot: ComputeProgress(items, feature, r.active),
		Items:    items,
		Found:    true,
	}, nil
}

// load reads and parses a feature's tasks document.
func (r *Reconciler) load(feature string) ([]Item, error) {
	text, err := r.store.ReadDocument(feature)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read tasks for %s: %w", feature, err)
	}
	return Parse(text), nil
}

func (r *Reconciler) record(fn func(Recorder) error) {
	if r.recorder == nil {
		return
	}
	if err := fn(r.recorder); err != nil {
		r.logger.WithError(err).Warn("failed to record task event")
	}
}
