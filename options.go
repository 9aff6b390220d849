package procmux

import (
	"fmt"
	"time"

	"github.com/giantswarm/procmux/internal/process"
	"github.com/giantswarm/procmux/internal/textstream"
)

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive[T int | time.Duration](name string, v T) {
	if v <= 0 {
		panic(fmt.Sprintf("procmux: %s must be greater than 0, got %v", name, v))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("procmux: %s must not be empty", name))
	}
}

// requireEncoding panics if name is not a known encoding.
func requireEncoding(name string) {
	requireNonEmpty("encoding", name)
	if _, err := textstream.Lookup(name); err != nil {
		panic(fmt.Sprintf("procmux: %v", err))
	}
}

// SupervisorOption configures a Supervisor during construction via
// NewSupervisor. Each With* function returns a SupervisorOption that sets a
// specific field.
//
// Several With* functions panic on invalid input. Option values are
// typically constants, so an invalid value is a programmer error and fails
// fast in the style of regexp.MustCompile.
type SupervisorOption func(*supervisorConfig)

// WithReadChunkSize sets the number of bytes requested per pipe read.
//
// Default: 64 KiB.
//
// Panics if n <= 0.
func WithReadChunkSize(n int) SupervisorOption {
	requirePositive("read chunk size", n)
	return func(c *supervisorConfig) {
		c.ReadChunkSize = n
	}
}

// WithDefaultEncoding sets the encoding used to decode piped output of
// processes spawned without WithEncoding. Any IANA character set name is
// accepted.
//
// Default: UTF-8.
//
// Panics if name is empty or unknown.
func WithDefaultEncoding(name string) SupervisorOption {
	requireEncoding(name)
	return func(c *supervisorConfig) {
		c.DefaultEncoding = name
	}
}

// WithKillOnParentExit controls whether non-detached children are killed by
// the OS when the supervising process dies. Only Linux honors it.
//
// Default: true.
func WithKillOnParentExit(enabled bool) SupervisorOption {
	return func(c *supervisorConfig) {
		c.KillOnParentExit = enabled
	}
}

// WithWaitPollInterval sets how often Process.WaitTimeout checks whether the
// process has exited.
//
// Default: 10 milliseconds.
//
// Panics if d <= 0.
func WithWaitPollInterval(d time.Duration) SupervisorOption {
	requirePositive("wait poll interval", d)
	return func(c *supervisorConfig) {
		c.WaitPollInterval = d
	}
}

// WithPIDFileLockTimeout bounds how long Spawn waits for a PID file lock
// held by someone else.
//
// Default: 5 seconds.
//
// Panics if d <= 0.
func WithPIDFileLockTimeout(d time.Duration) SupervisorOption {
	requirePositive("pid file lock timeout", d)
	return func(c *supervisorConfig) {
		c.PIDFileLockTimeout = d
	}
}

// SpawnOption configures a single Spawn call. Without options the child's
// stdout and stderr are discarded and it shares the supervisor's session.
type SpawnOption func(*spawnConfig)

// WithStdoutFile writes the child's stdout to path. The file is created or
// truncated and its parent directory is created if missing.
//
// Panics if path is empty.
func WithStdoutFile(path string) SpawnOption {
	requireNonEmpty("stdout path", path)
	return func(c *spawnConfig) {
		c.Stdout = process.Target{Kind: process.TargetFile, Path: path}
	}
}

// WithStderrFile writes the child's stderr to path, like WithStdoutFile.
//
// Panics if path is empty.
func WithStderrFile(path string) SpawnOption {
	requireNonEmpty("stderr path", path)
	return func(c *spawnConfig) {
		c.Stderr = process.Target{Kind: process.TargetFile, Path: path}
	}
}

// WithStdoutPipe connects the child's stdout to a Stream returned by
// Process.Stdout.
func WithStdoutPipe() SpawnOption {
	return func(c *spawnConfig) {
		c.Stdout = process.Target{Kind: process.TargetPipe}
	}
}

// WithStderrPipe connects the child's stderr to a Stream returned by
// Process.Stderr.
func WithStderrPipe() SpawnOption {
	return func(c *spawnConfig) {
		c.Stderr = process.Target{Kind: process.TargetPipe}
	}
}

// WithDetached starts the child in a new session (a new process group on
// Windows) so that it does not receive the terminal's signals and is not
// killed when the supervising process exits.
func WithDetached() SpawnOption {
	return func(c *spawnConfig) {
		c.Detached = true
	}
}

// WithDir sets the child's working directory.
//
// Panics if dir is empty.
func WithDir(dir string) SpawnOption {
	requireNonEmpty("working directory", dir)
	return func(c *spawnConfig) {
		c.Dir = dir
	}
}

// WithEnv appends KEY=value entries to the environment the child inherits.
// Later entries override earlier ones for the same key.
func WithEnv(env ...string) SpawnOption {
	return func(c *spawnConfig) {
		c.Env = append(c.Env, env...)
	}
}

// WithPIDFile writes the child's process ID to path and holds a lock on it
// until the process is closed, at which point the file is removed.
//
// Panics if path is empty.
func WithPIDFile(path string) SpawnOption {
	requireNonEmpty("pid file path", path)
	return func(c *spawnConfig) {
		c.PIDFile = path
	}
}

// WithEncoding sets the encoding used to decode the child's piped output.
//
// Panics if name is empty or unknown.
func WithEncoding(name string) SpawnOption {
	requireEncoding(name)
	return func(c *spawnConfig) {
		c.Encoding = name
	}
}
