package storage

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/blz-dev/blz/internal/ferr"
)

// WriteLock serializes writers for a single source, matching the
// spec's "single writer, many concurrent readers" rule (§1, §4.6).
type WriteLock struct {
	path   string
	fl     *flock.Flock
	locked bool
}

// NewWriteLock returns (unlocked) a lock for the given source root.
func NewWriteLock(layout Layout) *WriteLock {
	path := layout.LockPath()
	return &WriteLock{path: path, fl: flock.New(path)}
}

// Lock blocks until the write lock is acquired.
func (w *WriteLock) Lock() error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return ferr.StorageErr("failed to create source directory", err)
	}
	if err := w.fl.Lock(); err != nil {
		return ferr.StorageErr("failed to acquire write lock", err)
	}
	w.locked = true
	return nil
}

// TryLock attempts to acquire the lock without blocking. A false
// return (no error) means another writer currently holds it.
func (w *WriteLock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return false, ferr.StorageErr("failed to create source directory", err)
	}
	ok, err := w.fl.TryLock()
	if err != nil {
		return false, ferr.StorageErr("failed to acquire write lock", err)
	}
	w.locked = ok
	return ok, nil
}

// Unlock releases the lock; safe to call when not held.
func (w *WriteLock) Unlock() error {
	if !w.locked {
		return nil
	}
	if err := w.fl.Unlock(); err != nil {
		return ferr.StorageErr("failed to release write lock", err)
	}
	w.locked = false
	return nil
}
