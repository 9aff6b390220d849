// Package process spawns child processes and tracks their lifecycle.
//
// Spawn creates a child with stdin read from the null device and stdout and
// stderr sent to the null device, a file, or a pipe.Channel. The returned
// Tracker owns the "has the exit status been collected" state machine:
// Wait, IsAlive, ExitStatus, Signal and Kill all short-circuit once the
// status is collected, and no reap system call is ever issued twice for the
// same process ID. That invariant matters because a reaped process ID may be
// recycled by the kernel for an unrelated process.
//
// WaitExited bounds a wait with a timeout by polling IsAlive.
package process
