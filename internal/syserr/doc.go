// Package syserr holds the error plumbing shared by the process, pipe and
// poll packages.
//
// Error is an immutable string-backed error that can be declared as a const,
// so sentinel values such as ErrChildExecFailed cannot be reassigned by
// consumers. Wrap attaches the originating system call and error code to a
// sentinel, producing chains that work with both errors.Is (for the category)
// and errors.As (for the *os.SyscallError and its errno). Retry implements
// the transparent restart of system calls interrupted by a signal.
package syserr
