package process

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/windows"
)

// startProcess creates the child with CreateProcess. Windows reports an
// unexecutable image before any process exists.
func startProcess(argv0 string, argv []string, cfg SpawnConfig, files [3]*os.File) (int, osProcess, error) {
	sys := &syscall.SysProcAttr{HideWindow: true}
	if cfg.Detached {
		sys.CreationFlags = windows.DETACHED_PROCESS | windows.CREATE_NEW_PROCESS_GROUP
	}
	attr := &syscall.ProcAttr{
		Dir:   cfg.Dir,
		Env:   environ(cfg.Env),
		Files: []uintptr{files[0].Fd(), files[1].Fd(), files[2].Fd()},
		Sys:   sys,
	}
	pid, handle, err := syscall.StartProcess(argv0, argv, attr)
	if err != nil {
		return 0, nil, err
	}
	return pid, &windowsProcess{handle: windows.Handle(handle)}, nil
}

func isExecErrno(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	switch errno {
	case windows.ERROR_FILE_NOT_FOUND, windows.ERROR_PATH_NOT_FOUND,
		windows.ERROR_ACCESS_DENIED, windows.ERROR_BAD_EXE_FORMAT,
		windows.ERROR_DIRECTORY:
		return true
	default:
		return false
	}
}
