package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// LockFileName is the session lock inside the .specflow directory.
const LockFileName = "session.lock"

// SessionLock prevents two tracking sessions from driving the same workspace.
// The lock file holds the owner's PID; locks left by dead processes are reclaimed.
type SessionLock struct {
	path string
}

// NewSessionLock creates a lock for the workspace.
func (w *Workspace) NewSessionLock() *SessionLock {
	return &SessionLock{path: filepath.Join(w.Dir(), LockFileName)}
}

// Acquire takes the lock or reports the PID holding it.
func (l *SessionLock) Acquire() error {
	err := l.create()
	if err == nil || !errors.Is(err, fs.ErrExist) {
		return err
	}

	pid, ok, err := l.holder()
	if err != nil {
		return err
	}
	if ok && processExists(pid) {
		return fmt.Errorf("another specflow session is running (PID %d)", pid)
	}

	// Stale or unreadable owner
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove stale lock file: %w", err)
	}

	// Retry once to avoid looping against a competing process
	if err := l.create(); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("lock acquired by another process during retry")
		}
		return err
	}
	return nil
}

// Release removes the lock file. Releasing an absent lock is not an error.
func (l *SessionLock) Release() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// IsLocked reports whether a live process holds the lock.
func (l *SessionLock) IsLocked() (bool, error) {
	pid, ok, err := l.holder()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return ok && processExists(pid), nil
}

// create atomically creates the lock file with our PID.
func (l *SessionLock) create() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return err
		}
		return fmt.Errorf("failed to create lock file: %w", err)
	}

	_, writeErr := fmt.Fprintf(f, "%d", os.Getpid())
	f.Close()
	if writeErr != nil {
		os.Remove(l.path)
		return fmt.Errorf("failed to write lock file: %w", writeErr)
	}
	return nil
}

// holder reads the PID from the lock file. ok is false when the content is
// not a valid PID.
func (l *SessionLock) holder() (pid int, ok bool, err error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, false, err
		}
		return 0, false, fmt.Errorf("failed to read lock file: %w", err)
	}

	pid, parseErr := strconv.Atoi(strings.TrimSpace(string(data)))
	if parseErr != nil {
		return 0, false, nil
	}
	return pid, true, nil
}

// processExists uses signal 0 to probe for a live process.
func processExists(pid int) bool {
	if pid == os.Getpid() {
		return true
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
