//go:build unix

package process

import (
	"errors"
	"os"
	"syscall"
)

// startProcess forks and executes argv0. The runtime's fork/exec reports a
// failed exec through a close-on-exec pipe and reaps the failed child before
// returning, so an error here never leaves a process behind.
func startProcess(argv0 string, argv []string, cfg SpawnConfig, files [3]*os.File) (int, osProcess, error) {
	attr := &syscall.ProcAttr{
		Dir:   cfg.Dir,
		Env:   environ(cfg.Env),
		Files: []uintptr{files[0].Fd(), files[1].Fd(), files[2].Fd()},
		Sys:   sysProcAttr(cfg),
	}
	pid, err := syscall.ForkExec(argv0, argv, attr)
	if err != nil {
		return 0, nil, err
	}
	return pid, &unixProcess{pid: pid}, nil
}

// isExecErrno reports whether err is one that only the child's chdir or exec
// can produce. Resource errors such as EAGAIN, ENOMEM and EMFILE come from
// fork or the handshake pipe in the parent.
func isExecErrno(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	switch errno {
	case syscall.ENOENT, syscall.EACCES, syscall.ENOEXEC, syscall.ENOTDIR,
		syscall.ELOOP, syscall.E2BIG, syscall.ETXTBSY, syscall.EISDIR,
		syscall.ENAMETOOLONG, syscall.EPERM:
		return true
	default:
		return false
	}
}
