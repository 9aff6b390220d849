package process

import "github.com/giantswarm/procmux/internal/syserr"

// ErrEmptyCommand is returned by Spawn when no command is given.
const ErrEmptyCommand = syserr.Error("command must not be empty")

// ErrForkFailed is returned by Spawn when the parent could not create the
// child, for example because fork or the handshake pipe failed. No child
// process exists when this error is returned.
const ErrForkFailed = syserr.Error("fork or exec handshake failed")

// ErrChildExecFailed is returned by Spawn when the child was created but could
// not replace its program image. The child's error code is attached and can be
// recovered with errors.As into a syscall.Errno.
const ErrChildExecFailed = syserr.Error("child failed to execute command")

// ErrStdioRedirectFailed is returned by Spawn when a redirect target could not
// be opened. It is reported before any child exists.
const ErrStdioRedirectFailed = syserr.Error("stdio redirect failed")

// ErrWaitFailed wraps system errors from collecting an exit status.
const ErrWaitFailed = syserr.Error("wait failed")

// ErrPermissionDenied is returned by Signal and Kill when the caller may not
// signal the process.
const ErrPermissionDenied = syserr.Error("permission denied")

// ErrSignalFailed wraps any other system error from signal delivery.
const ErrSignalFailed = syserr.Error("signal delivery failed")

// ErrWaitTimeout is returned by WaitExited when the process is still running
// after the timeout.
const ErrWaitTimeout = syserr.Error("timed out waiting for process to exit")

// ErrIntervalNotPositive indicates a non-positive poll interval.
const ErrIntervalNotPositive = syserr.Error("interval must be positive")

// ErrTimeoutNotPositive indicates a non-positive timeout.
const ErrTimeoutNotPositive = syserr.Error("timeout must be positive")

// errProcessGone is returned by an osProcess when the OS reports that the
// process no longer exists. It is absorbed into boolean results and never
// surfaces to callers.
const errProcessGone = syserr.Error("no such process")

// errBlockingWaitUnsupported is returned by osProcess.beginWait on
// platforms that cannot wait for termination without collecting the status.
const errBlockingWaitUnsupported = syserr.Error("non-reaping wait not supported")
