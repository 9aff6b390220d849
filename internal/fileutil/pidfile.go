package fileutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gofrs/flock"

	"github.com/giantswarm/procmux/internal/syserr"
)

// ErrPIDFileLocked is returned when another holder owns the PID file lock.
const ErrPIDFileLocked = syserr.Error("pid file is locked by another process")

// pidLockRetryInterval is the interval between attempts to take the lock.
const pidLockRetryInterval = 50 * time.Millisecond

// PIDFile is a file holding a process ID, guarded by an exclusive lock on a
// sibling ".lock" file for as long as the PIDFile is held.
type PIDFile struct {
	path string
	lock *flock.Flock
}

// WritePIDFile takes the lock for path, waiting until ctx is done, and then
// writes pid to path.
func WritePIDFile(ctx context.Context, path string, pid int) (*PIDFile, error) {
	if err := EnsureDirForFile(path); err != nil {
		return nil, err
	}

	fl := flock.New(path + ".lock")
	locked, err := fl.TryLockContext(ctx, pidLockRetryInterval)
	switch {
	case errors.Is(err, context.DeadlineExceeded), err == nil && !locked:
		return nil, fmt.Errorf("%s: %w", path, ErrPIDFileLocked)
	case err != nil:
		return nil, fmt.Errorf("acquiring pid file lock %s: %w", fl.Path(), err)
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), OutputFileMode); err != nil {
		_ = fl.Close()
		return nil, fmt.Errorf("write pid file %s: %w", path, err)
	}
	return &PIDFile{path: path, lock: fl}, nil
}

// Path returns the path of the PID file.
func (p *PIDFile) Path() string {
	return p.path
}

// Remove deletes the PID file and releases the lock. The lock file is left on
// disk; removing it could invalidate a lock concurrently taken by someone
// else. Remove is safe to call on a nil PIDFile and more than once.
func (p *PIDFile) Remove(logger *slog.Logger) {
	if p == nil || p.lock == nil {
		return
	}
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Debug("failed to remove pid file", "path", p.path, "err", err)
	}
	if err := p.lock.Close(); err != nil {
		logger.Debug("failed to release pid file lock", "path", p.lock.Path(), "err", err)
	}
	p.lock = nil
}
