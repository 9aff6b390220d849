//go:build linux

package process

import "syscall"

// sysProcAttr returns the Linux process attributes for cfg. A detached child
// gets its own session. A non-detached child can additionally be tied to the
// parent with Pdeathsig, so it receives SIGKILL if the parent dies without
// reaping it.
func sysProcAttr(cfg SpawnConfig) *syscall.SysProcAttr {
	attr := &syscall.SysProcAttr{Setsid: cfg.Detached}
	if cfg.KillOnParentExit && !cfg.Detached {
		attr.Pdeathsig = syscall.SIGKILL
	}
	return attr
}
