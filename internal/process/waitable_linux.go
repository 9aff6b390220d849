package process

import (
	"errors"

	"golang.org/x/sys/unix"

	"github.com/giantswarm/procmux/internal/syserr"
)

// beginWait opens a pidfd while the child is still unreaped, so the wait is
// bound to this process even if the ID is recycled before waitid starts.
// WNOWAIT leaves the child a zombie until Tracker reaps it under lock.
// Kernels without pidfd_open fall back to waiting by process ID.
func (p *unixProcess) beginWait() (func() error, func(), error) {
	fd, err := unix.PidfdOpen(p.pid, 0)
	switch {
	case errors.Is(err, unix.ESRCH):
		return nil, nil, unix.ECHILD
	case err != nil:
		return waitidFunc(unix.P_PID, p.pid), func() {}, nil
	}
	return waitidFunc(unix.P_PIDFD, fd), func() { _ = unix.Close(fd) }, nil
}

func waitidFunc(idType, id int) func() error {
	return func() error {
		var info unix.Siginfo
		return syserr.Retry(func() error {
			return unix.Waitid(idType, id, &info, unix.WEXITED|unix.WNOWAIT, nil)
		})
	}
}
