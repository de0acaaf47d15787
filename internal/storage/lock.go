package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the database's write lock.
var ErrLocked = errors.New("marker database is locked by another scan")

// WriteLock serializes scans that write to the same database file.
type WriteLock struct {
	lock *flock.Flock
}

// AcquireWriteLock takes the lock file next to dbPath without blocking.
func AcquireWriteLock(dbPath string) (*WriteLock, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	lock := flock.New(dbPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return &WriteLock{lock: lock}, nil
}

// Release unlocks. The lock file is left in place.
func (l *WriteLock) Release() error {
	return l.lock.Unlock()
}
