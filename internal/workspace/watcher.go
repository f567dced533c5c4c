package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pablasso/specflow/internal/log"
)

// SavedEvent reports that a feature's tasks document changed on disk.
type SavedEvent struct {
	Feature string
	Path    string
}

// Watcher emits a SavedEvent whenever a tasks document under the specs
// directory is written, created or replaced. Bursts of events for the same
// feature within the debounce interval are coalesced into one.
//
// The Events and Errors channels are never closed; select on Done to stop.
type Watcher struct {
	ws       *Workspace
	fsw      *fsnotify.Watcher
	debounce time.Duration
	logger   *log.Logger

	events chan SavedEvent
	errors chan error
	done   chan struct{}

	mu        sync.Mutex
	timers    map[string]*time.Timer
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Watch starts watching the specs directory and every feature folder in it.
func (w *Workspace) Watch(debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.Nop()
	}
	if err := ensureDir(w.specsDir); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	watcher := &Watcher{
		ws:       w,
		fsw:      fsw,
		debounce: debounce,
		logger:   logger.With("component", "watcher"),
		events:   make(chan SavedEvent, 16),
		errors:   make(chan error, 4),
		done:     make(chan struct{}),
		timers:   make(map[string]*time.Timer),
	}

	if err := fsw.Add(w.specsDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", w.specsDir, err)
	}
	names, err := w.featureNames()
	if err != nil {
		fsw.Close()
		return nil, err
	}
	for _, name := range names {
		if err := fsw.Add(w.FeatureDir(name)); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch feature %s: %w", name, err)
		}
	}

	watcher.wg.Add(1)
	go watcher.loop()
	return watcher, nil
}

// Events delivers saved-document notifications.
func (wt *Watcher) Events() <-chan SavedEvent {
	return wt.events
}

// Errors delivers watcher errors.
func (wt *Watcher) Errors() <-chan error {
	return wt.errors
}

// Done is closed once the watcher is closed.
func (wt *Watcher) Done() <-chan struct{} {
	return wt.done
}

// Close stops the watcher. It is safe to call more than once.
func (wt *Watcher) Close() error {
	var err error
	wt.closeOnce.Do(func() {
		close(wt.done)
		err = wt.fsw.Close()
		wt.wg.Wait()

		wt.mu.Lock()
		for _, t := range wt.timers {
			t.Stop()
		}
		wt.timers = map[string]*time.Timer{}
		wt.mu.Unlock()
	})
	return err
}

func (wt *Watcher) loop() {
	defer wt.wg.Done()
	for {
		select {
		case <-wt.done:
			return
		case ev, ok := <-wt.fsw.Events:
			if !ok {
				return
			}
			wt.handle(ev)
		case err, ok := <-wt.fsw.Errors:
			if !ok {
				return
			}
			wt.logger.WithError(err).Warn("file watcher error")
			select {
			case wt.errors <- err:
			default:
			}
		}
	}
}

func (wt *Watcher) handle(ev fsnotify.Event) {
	dir := filepath.Dir(ev.Name)

	// New feature folder directly under the specs directory
	if dir == filepath.Clean(wt.ws.specsDir) && ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := wt.fsw.Add(ev.Name); err != nil {
				wt.logger.WithError(err).Warn("failed to watch new feature", "path", ev.Name)
			}
			// The tasks document may have been written before the watch was added
			if _, err := os.Stat(filepath.Join(ev.Name, TasksFile)); err == nil {
				wt.schedule(filepath.Base(ev.Name), filepath.Join(ev.Name, TasksFile))
			}
		}
		return
	}

	if filepath.Base(ev.Name) != TasksFile {
		return
	}
	if filepath.Dir(dir) != filepath.Clean(wt.ws.specsDir) {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}

	wt.schedule(filepath.Base(dir), ev.Name)
}

// schedule emits a SavedEvent for feature after the debounce interval,
// restarting the interval if one is already pending.
func (wt *Watcher) schedule(feature, path string) {
	saved := SavedEvent{Feature: feature, Path: path}

	if wt.debounce <= 0 {
		wt.emit(saved)
		return
	}

	wt.mu.Lock()
	defer wt.mu.Unlock()

	if t, ok := wt.timers[feature]; ok {
		t.Reset(wt.debounce)
		return
	}
	wt.timers[feature] = time.AfterFunc(wt.debounce, func() {
		wt.mu.Lock()
		delete(wt.timers, feature)
		wt.mu.Unlock()
		wt.emit(saved)
	})
}

func (wt *Watcher) emit(ev SavedEvent) {
	select {
	case wt.events <- ev:
	case <-wt.done:
	}
}
