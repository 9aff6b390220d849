package procmux

import (
	"context"
	"syscall"
	"time"
)

// Supervisor spawns child processes and owns them until they are closed.
//
// Callers must follow this lifecycle ordering:
//
//	NewSupervisor → Spawn/Poll (repeatable) → Shutdown
//
// Shutdown is safe to call at any point and kills every process that is
// still running. All methods are safe for concurrent use.
type Supervisor interface {
	// Spawn starts command with args. A bare command name is looked up in
	// PATH. stdin is always the null device; stdout and stderr are discarded
	// unless a SpawnOption redirects them.
	//
	// Returns ErrStdioRedirectFailed if a redirect target cannot be opened,
	// ErrForkFailed if the child cannot be created and ErrChildExecFailed if
	// the child cannot execute command. No child remains after a failure.
	// Returns ErrShuttingDown after Shutdown.
	Spawn(command string, args []string, opts ...SpawnOption) (Process, error)

	// Processes returns every process that has not been closed.
	Processes() []Process

	// Lookup returns the open process with the given ID.
	Lookup(pid int) (Process, bool)

	// Poll reports the readiness of the requested streams, one pair (stdout,
	// stderr) per request, in request order.
	//
	// A negative timeout (Infinite) waits until some stream is ready, zero
	// never waits and a positive timeout bounds the wait. Poll returns as
	// soon as any stream is Ready; silent streams report TimedOut when the
	// timeout expires. Streams that were not requested or not piped report
	// NoPipe; closed streams report Closed.
	//
	// Poll uses no goroutines. Returns ErrMultiplexWait if the OS wait fails.
	// On Windows at most 64 silent streams can be waited for at once; beyond
	// that the error also matches ErrTooManyStreams.
	Poll(reqs []PollRequest, timeout time.Duration) ([][2]Readiness, error)

	// Shutdown closes every open process concurrently and rejects later
	// spawns. It returns the joined close errors.
	Shutdown() error
}

// Process is a spawned child.
//
// The exit status is collected exactly once, by whichever of Wait, IsAlive,
// ExitStatus, Signal, Kill or Close first observes termination. Once
// collected it never changes and no signal is sent to the process ID again.
type Process interface {
	// PID returns the process ID.
	PID() int

	// Command returns the command the process was spawned with.
	Command() string

	// Wait blocks until the process terminates and returns its exit status.
	// Concurrent callers share one wait and observe the same status.
	Wait() (ExitStatus, error)

	// IsAlive reports whether the process is still running. It never blocks.
	IsAlive() (bool, error)

	// ExitStatus returns the exit status if it is available without
	// blocking; ok is false while the process runs.
	ExitStatus() (status ExitStatus, ok bool, err error)

	// Signal delivers sig and reports whether the process was alive to
	// receive it. A process that has already terminated is not an error.
	// Returns ErrPermissionDenied if the caller may not signal the process.
	//
	// Only SIGKILL is followed by a blocking reap. Any other signal may be
	// caught, and signal 0 only probes, so after those Signal makes one
	// non-blocking reap attempt: it can return true while the status is
	// still uncollected. Use Wait or WaitTimeout to observe the exit.
	Signal(sig syscall.Signal) (bool, error)

	// Kill terminates the process with SIGKILL, collects its status and
	// reports whether this call killed it. grace is accepted but not yet
	// honored: there is no SIGTERM phase.
	Kill(grace time.Duration) (bool, error)

	// WaitTimeout waits at most timeout for the process to exit. Returns
	// ErrWaitTimeout, with the process still running, when it does not.
	WaitTimeout(ctx context.Context, timeout time.Duration) (ExitStatus, error)

	// Stdout returns the decoded stdout stream, or nil unless stdout was
	// spawned with WithStdoutPipe.
	Stdout() Stream

	// Stderr returns the decoded stderr stream, or nil unless stderr was
	// spawned with WithStderrPipe.
	Stderr() Stream

	// Close kills the process if it is still running, collects its exit
	// status, closes its streams, removes its PID file and unregisters it
	// from the Supervisor. Close is idempotent.
	Close() error
}

// Stream is the decoded text output of one child stream. Line endings are
// "\n" with an optional "\r" stripped; the last line is terminated even when
// the child's output is not.
//
// A Stream must not be used from more than one goroutine at a time.
type Stream interface {
	// ReadLine blocks until a full line or end of output. ok is false at end
	// of output. After end of output it never blocks.
	ReadLine() (line string, ok bool, err error)

	// ReadLines reads up to n lines, or every line until end of output if
	// n < 0.
	ReadLines(n int) ([]string, error)

	// ReadAvailable returns the complete lines that can be read without
	// blocking. Call it after Poll reports the stream Ready.
	ReadAvailable() ([]string, error)

	// IsEOF reports whether end of output has been reached. It is sticky.
	IsEOF() bool

	// Close releases the stream. Later polls report it Closed and reads
	// return ErrStreamClosed.
	Close() error
}

// PollRequest selects the streams of one process for Supervisor.Poll.
type PollRequest struct {
	Process Process
	Stdout  bool
	Stderr  bool
}
