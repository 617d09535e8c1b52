package fs

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

const LockName = ".mediasort.lock"

var ErrLocked = errors.New("destination is locked by another run")

type Lock struct {
	lock *flock.Flock
}

// AcquireLock takes an exclusive, non-blocking lock on dir.
func AcquireLock(dir string) (*Lock, error) {
	l := flock.New(filepath.Join(dir, LockName))

	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("unable to lock %v: %w", dir, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrLocked, l.Path())
	}

	return &Lock{lock: l}, nil
}

func (l *Lock) Path() string {
	return l.lock.Path()
}

// Release unlocks dir. The lock file stays in place: unlinking it would let a
// run still waiting on the old inode and a run creating a new one both
// believe they hold the lock.
func (l *Lock) Release() error {
	return l.lock.Unlock()
}
