package procmux

import (
	"time"

	"github.com/giantswarm/procmux/internal/pipe"
	"github.com/giantswarm/procmux/internal/textstream"
)

// Default configuration values for NewSupervisor.
// These constants are exported so callers can build custom configurations
// relative to them (e.g., 4 * DefaultReadChunkSize).
const (
	// DefaultReadChunkSize is the number of bytes requested from a pipe per
	// read system call.
	DefaultReadChunkSize = pipe.DefaultReadChunkSize

	// DefaultEncoding decodes piped output when neither the supervisor nor
	// the spawn names an encoding.
	DefaultEncoding = textstream.DefaultEncoding

	// DefaultWaitPollInterval is how often Process.WaitTimeout checks
	// whether the process has exited.
	DefaultWaitPollInterval = 10 * time.Millisecond

	// DefaultPIDFileLockTimeout bounds how long Spawn waits for the lock on
	// a PID file that another process holds.
	DefaultPIDFileLockTimeout = 5 * time.Second
)
