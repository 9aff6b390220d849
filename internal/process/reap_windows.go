package process

import (
	"errors"
	"syscall"

	"golang.org/x/sys/windows"
)

// terminateExitCode is the exit code passed to TerminateProcess. A process
// that this package terminated and that reports this code is recorded as
// killed by the signal that requested the termination.
const terminateExitCode = 1

// windowsProcess reaps and signals a child through its process handle. The
// handle keeps the process ID reserved until it is closed, so collection on
// Windows is reading the exit code and closing the handle.
type windowsProcess struct {
	handle     windows.Handle
	terminated syscall.Signal
}

// beginWait duplicates the process handle for the waiter, so a concurrent
// collect can close the original while the wait is still pending.
func (p *windowsProcess) beginWait() (func() error, func(), error) {
	self := windows.CurrentProcess()
	var dup windows.Handle
	if err := windows.DuplicateHandle(self, p.handle, self, &dup, 0, false, windows.DUPLICATE_SAME_ACCESS); err != nil {
		return nil, nil, err
	}
	wait := func() error {
		_, err := windows.WaitForSingleObject(dup, windows.INFINITE)
		return err
	}
	return wait, func() { _ = windows.CloseHandle(dup) }, nil
}

func (p *windowsProcess) collect(block bool) (ExitStatus, bool, error) {
	timeout := uint32(0)
	if block {
		timeout = windows.INFINITE
	}
	ev, err := windows.WaitForSingleObject(p.handle, timeout)
	if err != nil {
		return 0, false, err
	}
	if ev == uint32(windows.WAIT_TIMEOUT) {
		return 0, false, nil
	}

	var code uint32
	if err := windows.GetExitCodeProcess(p.handle, &code); err != nil {
		return 0, false, err
	}
	if p.terminated != 0 && code == terminateExitCode {
		return signaledStatus(p.terminated), true, nil
	}
	return ExitStatus(int32(code)), true, nil
}

// signal emulates POSIX delivery: signal 0 probes for existence and the
// termination signals end the process. Nothing else has a Windows meaning.
func (p *windowsProcess) signal(sig syscall.Signal) error {
	ev, err := windows.WaitForSingleObject(p.handle, 0)
	if err != nil {
		return err
	}
	if ev == windows.WAIT_OBJECT_0 {
		return errProcessGone
	}

	switch sig {
	case 0:
		return nil
	case syscall.SIGKILL, syscall.SIGTERM, syscall.SIGINT:
		if err := windows.TerminateProcess(p.handle, terminateExitCode); err != nil {
			if errors.Is(err, windows.ERROR_ACCESS_DENIED) {
				// TerminateProcess on an exiting process reports access denied.
				if ev, werr := windows.WaitForSingleObject(p.handle, 0); werr == nil && ev == windows.WAIT_OBJECT_0 {
					return errProcessGone
				}
			}
			return err
		}
		p.terminated = sig
		return nil
	default:
		return windows.ERROR_NOT_SUPPORTED
	}
}

func (p *windowsProcess) release() {
	if p.handle != 0 {
		_ = windows.CloseHandle(p.handle)
		p.handle = 0
	}
}
