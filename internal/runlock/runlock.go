package runlock

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	apperrors "github.com/glefebvre/mediasort/internal/errors"
)

// Lock is an exclusive advisory lock held for the duration of a run
type Lock struct {
	path  string
	flock *flock.Flock
}

// Acquire takes the lock at path without blocking.
// It returns a CodeLocked error when another process already holds it.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, apperrors.FilesystemError("mkdir", filepath.Dir(path), err)
	}

	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, apperrors.FilesystemError("lock", path, err)
	}
	if !ok {
		return nil, apperrors.New(apperrors.CodeLocked, "another run is already in progress").
			WithContext("path", path)
	}

	return &Lock{path: path, flock: fl}, nil
}

// Path returns the lock file location
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks the lock file
func (l *Lock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return apperrors.FilesystemError("unlock", l.path, err)
	}
	return nil
}
