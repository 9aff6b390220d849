package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/giantswarm/procmux/internal/process"
	"github.com/giantswarm/procmux/internal/textstream"
)

// SupervisorConfig holds configuration for a Supervisor. All fields are
// immutable after construction via NewSupervisor.
type SupervisorConfig struct {
	// ReadChunkSize is the number of bytes requested per pipe read.
	ReadChunkSize int

	// DefaultEncoding decodes piped output when a spawn names no encoding.
	DefaultEncoding string

	// KillOnParentExit ties non-detached children to the supervisor's
	// process where the OS supports it.
	KillOnParentExit bool

	// WaitPollInterval is how often WaitTimeout checks the process.
	WaitPollInterval time.Duration

	// PIDFileLockTimeout bounds how long Spawn waits for a PID file lock.
	PIDFileLockTimeout time.Duration
}

// Validate checks all SupervisorConfig invariants and returns an error
// describing every violation found.
func (c SupervisorConfig) Validate() error {
	var errs []error

	if c.ReadChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("read chunk size must be greater than 0, got %d", c.ReadChunkSize))
	}
	if _, err := textstream.Lookup(c.DefaultEncoding); err != nil {
		errs = append(errs, fmt.Errorf("default encoding: %w", err))
	}
	if c.WaitPollInterval <= 0 {
		errs = append(errs, fmt.Errorf("wait poll interval must be greater than 0, got %s", c.WaitPollInterval))
	}
	if c.PIDFileLockTimeout <= 0 {
		errs = append(errs, fmt.Errorf("pid file lock timeout must be greater than 0, got %s", c.PIDFileLockTimeout))
	}

	return errors.Join(errs...)
}

// SpawnConfig holds the per-process settings for Supervisor.Spawn.
type SpawnConfig struct {
	Stdout   process.Target
	Stderr   process.Target
	Detached bool
	Dir      string
	Env      []string
	// PIDFile, when set, receives the child's process ID under a lock held
	// until the process is closed.
	PIDFile string
	// Encoding overrides SupervisorConfig.DefaultEncoding for piped output.
	Encoding string
}
