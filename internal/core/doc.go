// Package core provides the internal implementation of procmux.
// It contains the Supervisor (owner of every spawned process, with a
// shutdown that kills and reaps whatever is still running), Registry (an
// arena of handles keyed by process ID with stale-reference detection), and
// Process (a tracked child together with its output streams, PID file and
// close escalation).
package core
