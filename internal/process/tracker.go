package process

import (
	"errors"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/giantswarm/procmux/internal/syserr"
)

// osProcess is the platform half of a Tracker. Implementations are not
// required to be safe for concurrent use; Tracker serializes every method
// under its mutex. Only the wait function returned by beginWait runs
// without it.
type osProcess interface {
	// beginWait prepares a blocking wait for termination that does not
	// collect the status, so the process ID stays reserved. The returned
	// wait must stay valid after release and after the process is reaped;
	// done frees what it holds. It returns errBlockingWaitUnsupported where
	// the platform cannot wait without reaping.
	beginWait() (wait func() error, done func(), err error)

	// collect collects the exit status if the process has terminated. With
	// block set it waits for termination; Tracker only does that once
	// termination is already known.
	collect(block bool) (status ExitStatus, done bool, err error)

	// signal delivers sig, returning errProcessGone if the process no longer
	// exists.
	signal(sig syscall.Signal) error

	// release frees platform resources once the status is collected.
	release()
}

// collectPollMin and collectPollMax bound the backoff used by Wait on
// platforms without a non-reaping blocking wait.
const (
	collectPollMin = time.Millisecond
	collectPollMax = 50 * time.Millisecond
)

// Tracker owns the exit-status state machine of one child process.
//
// The process starts RUNNING and moves exactly once to EXITED or SIGNALED,
// both recorded as collected. Every reap system call and every signal
// delivery happens with mu held, and collected is set under the same lock
// as the reap that produced it. A signal can therefore never reach a process
// ID the kernel has already recycled, and two callers can never reap the
// same process. Blocking waits happen outside the lock so that Signal and
// Kill stay responsive while a Wait is in progress.
//
// Tracker is safe for concurrent use by multiple goroutines.
type Tracker struct {
	pid  int
	proc osProcess
	log  *slog.Logger

	mu        sync.Mutex
	collected bool
	status    ExitStatus
	// lost is set when the status could not be collected because something
	// outside this Tracker already reaped the process. collected is true.
	lost error

	// waits collapses concurrent Wait calls into one blocking system call.
	waits singleflight.Group
}

func newTracker(pid int, proc osProcess, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{pid: pid, proc: proc, log: logger.With("pid", pid)}
}

// PID returns the process ID.
func (t *Tracker) PID() int {
	return t.pid
}

// Collected reports whether the exit status has been collected.
func (t *Tracker) Collected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.collected
}

// Wait blocks until the process terminates and returns its exit status.
// Concurrent callers share one blocking wait and all observe the same
// status; only one of them performs the reap.
func (t *Tracker) Wait() (ExitStatus, error) {
	t.mu.Lock()
	if t.collected {
		defer t.mu.Unlock()
		return t.status, t.lost
	}
	t.mu.Unlock()

	if _, err, _ := t.waits.Do("wait", func() (any, error) {
		return nil, t.waitCollected()
	}); err != nil {
		return 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status, t.lost
}

func (t *Tracker) waitCollected() error {
	t.mu.Lock()
	if t.collected {
		t.mu.Unlock()
		return nil
	}
	wait, done, err := t.proc.beginWait()
	t.mu.Unlock()

	switch {
	case errors.Is(err, errBlockingWaitUnsupported):
		return t.pollCollected()
	case err == nil:
		err = wait()
		done()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// IsAlive, ExitStatus or Signal may have collected the status while the
	// wait ran. Their result stands whatever the wait itself reported.
	if t.collected {
		return nil
	}
	if err != nil && !errors.Is(err, syscall.ECHILD) {
		return syserr.Wrap(ErrWaitFailed, "waitid", err)
	}
	// The process has terminated (or was reaped elsewhere), so a blocking
	// collect returns immediately and holding the lock is fine.
	return t.collectLocked(true)
}

// pollCollected reaps with non-blocking attempts and a capped backoff, never
// holding the lock while sleeping.
func (t *Tracker) pollCollected() error {
	delay := collectPollMin
	for {
		t.mu.Lock()
		err := t.collectLocked(false)
		done := t.collected
		t.mu.Unlock()
		if err != nil || done {
			return err
		}
		time.Sleep(delay)
		delay = min(2*delay, collectPollMax)
	}
}

// collectLocked attempts one reap unless the status is already collected.
// Callers must hold t.mu.
func (t *Tracker) collectLocked(block bool) error {
	if t.collected {
		return nil
	}
	status, done, err := t.proc.collect(block)
	if err != nil {
		wrapped := syserr.Wrap(ErrWaitFailed, "wait4", err)
		if errors.Is(err, syscall.ECHILD) {
			// Someone else reaped the process; its status is gone for good
			// and the ID must not be touched again.
			t.lost = wrapped
			t.markCollectedLocked(0)
		}
		return wrapped
	}
	if done {
		t.markCollectedLocked(status)
	}
	return nil
}

func (t *Tracker) markCollectedLocked(status ExitStatus) {
	t.collected = true
	t.status = status
	t.proc.release()
	t.log.Debug("process reaped", "status", status.String())
}

// IsAlive reports whether the process is still running. It never blocks; if
// the process has terminated its status is collected as a side effect.
func (t *Tracker) IsAlive() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.collectLocked(false); err != nil {
		return false, err
	}
	return !t.collected, nil
}

// ExitStatus returns the exit status if it has been or can now be collected
// without blocking. ok is false while the process is still running. Once
// collected, every call returns the same values without any system call.
func (t *Tracker) ExitStatus() (status ExitStatus, ok bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.collected {
		return t.status, t.lost == nil, t.lost
	}
	if err := t.collectLocked(false); err != nil {
		return 0, false, err
	}
	if !t.collected {
		return 0, false, nil
	}
	return t.status, true, nil
}

// Signal delivers sig and reports whether the process was alive to receive
// it. A collected process is never signaled. A process that vanished is not
// an error: its status is collected and Signal returns false.
//
// After a successful delivery the status is collected if available: with a
// blocking wait for SIGKILL, which cannot be caught, and with a non-blocking
// attempt for every other signal, which the process may handle and survive.
func (t *Tracker) Signal(sig syscall.Signal) (bool, error) {
	t.mu.Lock()
	if t.collected {
		t.mu.Unlock()
		return false, nil
	}

	if err := t.proc.signal(sig); err != nil {
		defer t.mu.Unlock()
		if errors.Is(err, errProcessGone) {
			return false, t.collectLocked(false)
		}
		return false, signalError(err)
	}

	if sig != syscall.SIGKILL {
		defer t.mu.Unlock()
		return true, t.collectLocked(false)
	}
	t.mu.Unlock()

	if _, err := t.Wait(); err != nil {
		return true, err
	}
	return true, nil
}

// Kill forcibly terminates the process and reports whether it was killed by
// this call. It returns false if the status was already collected, or if a
// non-blocking reap finds the process has already terminated.
//
// The grace period is accepted for interface compatibility but not
// implemented: Kill escalates straight to SIGKILL. True is reported when the
// collected status is termination by SIGKILL, which cannot distinguish an
// unrelated SIGKILL that arrived at the same time.
func (t *Tracker) Kill(grace time.Duration) (bool, error) {
	t.mu.Lock()
	if t.collected {
		t.mu.Unlock()
		return false, nil
	}
	if err := t.collectLocked(false); err != nil || t.collected {
		t.mu.Unlock()
		return false, err
	}

	if grace > 0 {
		t.log.Debug("kill grace period is not implemented, sending SIGKILL immediately", "grace", grace)
	}

	if err := t.proc.signal(syscall.SIGKILL); err != nil {
		defer t.mu.Unlock()
		if errors.Is(err, errProcessGone) {
			// Already gone; a lost status is not a failure of Kill.
			_ = t.collectLocked(false)
			return false, nil
		}
		return false, signalError(err)
	}
	t.mu.Unlock()

	status, err := t.Wait()
	if err != nil {
		return false, err
	}
	return status.Signal() == syscall.SIGKILL, nil
}

func signalError(err error) error {
	if errors.Is(err, os.ErrPermission) {
		return syserr.Wrap(ErrPermissionDenied, "kill", err)
	}
	return syserr.Wrap(ErrSignalFailed, "kill", err)
}
