//go:build unix

package process

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/giantswarm/procmux/internal/syserr"
)

// unixProcess reaps and signals a child by process ID.
type unixProcess struct {
	pid int
}

func (p *unixProcess) collect(block bool) (ExitStatus, bool, error) {
	options := unix.WNOHANG
	if block {
		options = 0
	}
	var ws unix.WaitStatus
	wpid, err := syserr.RetryValue(func() (int, error) {
		return unix.Wait4(p.pid, &ws, options, nil)
	})
	if err != nil {
		return 0, false, err
	}
	if wpid == 0 {
		return 0, false, nil
	}
	return statusFromWait(ws), true, nil
}

func (p *unixProcess) signal(sig syscall.Signal) error {
	err := unix.Kill(p.pid, sig)
	if errors.Is(err, unix.ESRCH) {
		return errProcessGone
	}
	return err
}

func (p *unixProcess) release() {}

// statusFromWait converts a wait(2) status into the sign-encoded form.
func statusFromWait(ws unix.WaitStatus) ExitStatus {
	if ws.Signaled() {
		return signaledStatus(ws.Signal())
	}
	return ExitStatus(ws.ExitStatus())
}
