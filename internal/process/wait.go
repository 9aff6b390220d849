package process

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// WaitExited polls t until the process has terminated, the timeout elapses, or
// ctx is canceled, and returns the collected status. Every poll is a
// non-blocking reap, so the process is never reaped twice and the caller is
// never blocked longer than one interval past the timeout.
//
// On timeout the error matches ErrWaitTimeout and the process is left
// running.
func WaitExited(ctx context.Context, t *Tracker, interval, timeout time.Duration) (ExitStatus, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("wait for pid %d: %w", t.PID(), ErrIntervalNotPositive)
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("wait for pid %d: %w", t.PID(), ErrTimeoutNotPositive)
	}

	attempt := 0
	err := wait.PollUntilContextTimeout(ctx, interval, timeout, true,
		func(context.Context) (bool, error) {
			attempt++
			alive, err := t.IsAlive()
			if err != nil {
				return false, err
			}
			if !alive {
				t.log.Debug("process exited", "attempt", attempt)
			}
			return !alive, nil
		})
	switch {
	case err == nil:
	case wait.Interrupted(err) && ctx.Err() == nil:
		return 0, fmt.Errorf("wait for pid %d after %s: %w", t.PID(), timeout, ErrWaitTimeout)
	case errors.Is(err, ErrWaitFailed):
		return 0, err
	default:
		return 0, fmt.Errorf("wait for pid %d: %w", t.PID(), err)
	}

	status, _, err := t.ExitStatus()
	return status, err
}
