//go:build unix && !linux

package process

import "syscall"

// sysProcAttr returns the process attributes for cfg. Pdeathsig is a Linux
// feature, so KillOnParentExit has no effect here.
func sysProcAttr(cfg SpawnConfig) *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: cfg.Detached}
}
