package syserr

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// Compile-time check that Error implements the error interface.
var _ error = Error("")

// Error is an immutable error type backed by a string constant.
// Because Error is comparable, errors.Is matches it through wrapped chains.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}

// Wrap returns an error that matches kind via errors.Is and carries the
// failed system call op and its cause. A cause that is not already an
// *os.SyscallError is wrapped in one, so callers can always recover the
// operation name and the raw errno with errors.As.
//
// Wrap returns nil when err is nil.
func Wrap(kind Error, op string, err error) error {
	if err == nil {
		return nil
	}
	var sysErr *os.SyscallError
	if !errors.As(err, &sysErr) {
		err = os.NewSyscallError(op, err)
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Errno extracts the system error code from err, reporting false when the
// chain carries none.
func Errno(err error) (syscall.Errno, bool) {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno, true
	}
	return 0, false
}

// Retry calls fn until it returns something other than EINTR.
func Retry(fn func() error) error {
	for {
		err := fn()
		if !errors.Is(err, syscall.EINTR) {
			return err
		}
	}
}

// RetryValue is Retry for calls that also produce a value.
func RetryValue[T any](fn func() (T, error)) (T, error) {
	for {
		v, err := fn()
		if !errors.Is(err, syscall.EINTR) {
			return v, err
		}
	}
}
