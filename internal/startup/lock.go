package startup

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrInstanceRunning is returned when another server holds the lock.
var ErrInstanceRunning = errors.New("another dupe-checker server is already running")

// InstanceLock keeps a second server from starting with the same runtime
// directory.
type InstanceLock struct {
	lock *flock.Flock
}

// AcquireLock takes the lock file at path without blocking.
func AcquireLock(path string) (*InstanceLock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock: %s)", ErrInstanceRunning, path)
	}
	return &InstanceLock{lock: lock}, nil
}

// Path returns the lock file path.
func (l *InstanceLock) Path() string {
	return l.lock.Path()
}

// Release gives up the lock.
func (l *InstanceLock) Release() error {
	return l.lock.Unlock()
}
