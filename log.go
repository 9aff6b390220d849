package procmux

import (
	"log/slog"

	"github.com/giantswarm/procmux/internal/core"
)

// SetLogger replaces the package-level logger used by procmux. The provided
// logger should already have any desired attributes; procmux will not add
// more.
//
// If l is nil, procmux falls back to slog.Default() with a "component"
// attribute, read afresh each time a supervisor or process is created.
//
// SetLogger is safe to call concurrently with other procmux operations, but
// supervisors and processes keep the logger that was current when they were
// created.
//
// Example:
//
//	procmux.SetLogger(myLogger.With("component", "procmux"))
func SetLogger(l *slog.Logger) {
	core.SetLogger(l)
}
