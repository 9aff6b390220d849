package procmux

import (
	"github.com/giantswarm/procmux/internal/core"
	"github.com/giantswarm/procmux/internal/fileutil"
	"github.com/giantswarm/procmux/internal/pipe"
	"github.com/giantswarm/procmux/internal/poll"
	"github.com/giantswarm/procmux/internal/process"
	"github.com/giantswarm/procmux/internal/textstream"
)

// Sentinel errors for error inspection with errors.Is.
// These are immutable constants safe for use in wrapped error chain
// comparison. Errors caused by a system call also wrap the *os.SyscallError
// or syscall.Errno, so errors.As recovers the OS error code.
const (
	// ErrEmptyCommand is returned by Spawn when command is empty.
	ErrEmptyCommand = process.ErrEmptyCommand

	// ErrForkFailed is returned by Spawn when the child process could not
	// be created.
	ErrForkFailed = process.ErrForkFailed

	// ErrChildExecFailed is returned by Spawn when the child was created but
	// could not execute the command, e.g. because it does not exist.
	ErrChildExecFailed = process.ErrChildExecFailed

	// ErrStdioRedirectFailed is returned by Spawn when an output file or pipe
	// could not be opened. The message names the stream.
	ErrStdioRedirectFailed = process.ErrStdioRedirectFailed

	// ErrWaitFailed is returned when an exit status cannot be collected,
	// including when something outside this package reaped the process.
	ErrWaitFailed = process.ErrWaitFailed

	// ErrPermissionDenied is returned by Signal and Kill when the process may
	// not be signaled.
	ErrPermissionDenied = process.ErrPermissionDenied

	// ErrSignalFailed is returned by Signal and Kill for any other delivery
	// failure.
	ErrSignalFailed = process.ErrSignalFailed

	// ErrWaitTimeout is returned by WaitTimeout when the process is still
	// running after the timeout.
	ErrWaitTimeout = process.ErrWaitTimeout

	// ErrMultiplexWait is returned by Poll when the OS wait fails.
	ErrMultiplexWait = poll.ErrMultiplexWait

	// ErrTooManyStreams is returned, together with ErrMultiplexWait, by a
	// Poll that would have to wait on more streams than the platform allows.
	ErrTooManyStreams = pipe.ErrTooManyStreams

	// ErrStreamClosed is returned by Stream reads after Close.
	ErrStreamClosed = textstream.ErrStreamClosed

	// ErrUnknownEncoding is returned by Spawn for an encoding name that is
	// not a known IANA character set.
	ErrUnknownEncoding = textstream.ErrUnknownEncoding

	// ErrPIDFileLocked is returned by Spawn when another process holds the
	// lock on the requested PID file.
	ErrPIDFileLocked = fileutil.ErrPIDFileLocked

	// ErrProcessClosed is returned by Signal, Kill and WaitTimeout after
	// Close.
	ErrProcessClosed = core.ErrProcessClosed

	// ErrShuttingDown is returned by Spawn after Shutdown.
	ErrShuttingDown = core.ErrShuttingDown
)
