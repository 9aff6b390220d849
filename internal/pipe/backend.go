package pipe

import (
	"time"

	"github.com/giantswarm/procmux/internal/syserr"
)

// ErrTooManyStreams is returned by Backend.Wait when the platform cannot
// wait on that many channels at once. Only Windows has such a limit.
const ErrTooManyStreams = syserr.Error("too many streams to wait on")

// Backend hides the platform I/O model from the poll algorithm.
type Backend interface {
	// Probe attempts to make a Silent channel Ready without blocking. On
	// Windows this starts the channel's overlapped read.
	Probe(c *Channel) (bool, error)

	// Wait blocks until at least one channel is readable or the timeout
	// elapses, and returns the indices of the channels that fired. A
	// negative timeout waits forever. An empty result means the timeout
	// elapsed. Interrupted waits are resumed with the remaining time.
	Wait(chs []*Channel, timeout time.Duration) ([]int, error)
}

// DefaultBackend returns the backend for the current platform.
func DefaultBackend() Backend {
	return osBackend{}
}

// timeoutMillis converts a timeout to whole milliseconds, rounding up so a
// short positive timeout does not become a non-blocking poll. A negative
// timeout returns -1.
func timeoutMillis(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}
	return int((timeout + time.Millisecond - 1) / time.Millisecond)
}

// remaining returns the time left until deadline for a bounded wait, or the
// negative infinite timeout unchanged.
func remaining(timeout time.Duration, deadline time.Time) time.Duration {
	if timeout < 0 {
		return timeout
	}
	return max(time.Until(deadline), 0)
}
