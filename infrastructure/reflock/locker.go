// Package reflock guards each ref's directory tree with an advisory file
// lock, so overlapping runs on the same machine or on machines sharing the
// filesystem skip each other's refs instead of corrupting them.
package reflock

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/buildforge/domain"
)

const dirMode = 0o755

// Locker hands out per-ref locks under the output root. The lock key is the
// ref's base path, so a branch and a tag sharing a name contend for the
// same lock.
type Locker struct {
	root string
}

// NewLocker returns a locker rooted at the output directory.
func NewLocker(root string) *Locker {
	return &Locker{root: root}
}

// TryAcquire takes the target's lock without blocking. A nil lock with a
// nil error means another holder has it and the ref should be skipped.
func (l *Locker) TryAcquire(target domain.TargetRef) (domain.Lock, error) {
	path := filepath.Join(l.root, domain.LockPath(target))

	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return nil, fmt.Errorf("failed to create lock directory for %s: %w", target, err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %q: %w", path, err)
	}
	if !locked {
		return nil, nil //nolint:nilnil // contention is a normal outcome, not an error
	}

	return &refLock{fl: fl}, nil
}

// refLock wraps a held flock. Release drops it exactly once; failures are
// logged and swallowed because an unreleased flock dies with the process
// anyway.
type refLock struct {
	fl   *flock.Flock
	once sync.Once
}

func (l *refLock) Release() {
	l.once.Do(func() {
		if err := l.fl.Unlock(); err != nil {
			logger.Warnf("[lock] failed to release %q: %v", l.fl.Path(), err)
		}
	})
}
