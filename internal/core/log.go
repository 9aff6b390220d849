package core

import (
	"log/slog"
	"sync/atomic"
)

// custom holds the logger installed by SetLogger, or nil.
var custom atomic.Pointer[slog.Logger]

// Logger returns the logger installed by SetLogger. Without one it derives a
// logger from the current slog.Default, so a later slog.SetDefault is always
// honored. Supervisors and processes capture the logger when they are
// created.
func Logger() *slog.Logger {
	if l := custom.Load(); l != nil {
		return l
	}
	return slog.Default().With("component", "procmux")
}

// SetLogger installs l for supervisors and processes created afterwards. A nil
// l restores the slog.Default fallback.
func SetLogger(l *slog.Logger) {
	custom.Store(l)
}
