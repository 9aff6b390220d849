package process

import (
	"fmt"
	"syscall"
)

// ExitStatus is a sign-encoded termination status. A non-negative value is
// the exit code of a process that exited normally; a negative value is the
// number of the signal that terminated it, negated.
type ExitStatus int

// signaledStatus encodes termination by sig.
func signaledStatus(sig syscall.Signal) ExitStatus {
	return ExitStatus(-int(sig))
}

// Exited reports whether the process exited normally.
func (s ExitStatus) Exited() bool {
	return s >= 0
}

// Signaled reports whether the process was terminated by a signal.
func (s ExitStatus) Signaled() bool {
	return s < 0
}

// Code returns the exit code, or -1 if the process was signaled.
func (s ExitStatus) Code() int {
	if s.Signaled() {
		return -1
	}
	return int(s)
}

// Signal returns the terminating signal, or 0 if the process exited normally.
func (s ExitStatus) Signal() syscall.Signal {
	if !s.Signaled() {
		return 0
	}
	return syscall.Signal(-int(s))
}

// String implements fmt.Stringer.
func (s ExitStatus) String() string {
	if s.Signaled() {
		return fmt.Sprintf("signal: %v", s.Signal())
	}
	return fmt.Sprintf("exit status %d", int(s))
}
