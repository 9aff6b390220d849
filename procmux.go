package procmux

import (
	"context"
	"syscall"
	"time"

	"github.com/giantswarm/procmux/internal/core"
	"github.com/giantswarm/procmux/internal/pipe"
	"github.com/giantswarm/procmux/internal/poll"
	"github.com/giantswarm/procmux/internal/process"
	"github.com/giantswarm/procmux/internal/textstream"
)

// Readiness is the state of one stream reported by Poll.
type Readiness = pipe.Readiness

// Readiness values.
const (
	// NoPipe means the stream was not requested or is not piped.
	NoPipe = pipe.NoPipe
	// Closed means the stream was closed or its end of output was consumed.
	Closed = pipe.Closed
	// Ready means a read will make progress without blocking.
	Ready = pipe.Ready
	// Silent means the stream has nothing to read yet.
	Silent = pipe.Silent
	// TimedOut means the poll timed out while the stream was silent.
	TimedOut = pipe.TimedOut
)

// Infinite makes Poll wait until a stream is ready.
const Infinite = poll.Infinite

// ExitStatus is a collected exit status: a non-negative exit code, or the
// negated number of the signal that terminated the process. Code, Signal,
// Exited and Signaled decode it.
type ExitStatus = process.ExitStatus

// Compile-time interface satisfaction checks.
var (
	_ Supervisor = (*supervisorWrapper)(nil)
	_ Process    = (*processWrapper)(nil)
	_ Stream     = (*textstream.Stream)(nil)
)

// supervisorWrapper wraps core.Supervisor to implement the Supervisor
// interface, returning Process interfaces instead of *core.Process.
//
// The core.Supervisor is stored as a named (unexported) field rather than
// embedded so that callers cannot reach internal methods through type
// assertions.
type supervisorWrapper struct {
	sup *core.Supervisor
}

// NewSupervisor returns a Supervisor configured by opts. It performs no I/O.
//
// Panics if any option receives an invalid value. See individual With*
// functions for constraints.
//
//nolint:ireturn // Returns Supervisor interface by design for testability (mockable).
func NewSupervisor(opts ...SupervisorOption) Supervisor {
	cfg := defaultSupervisorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &supervisorWrapper{sup: core.NewSupervisor(cfg.SupervisorConfig, nil)}
}

// Spawn implements Supervisor.Spawn.
//
//nolint:ireturn // Returns Process interface by design for testability (mockable).
func (w *supervisorWrapper) Spawn(command string, args []string, opts ...SpawnOption) (Process, error) {
	var cfg spawnConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	p, err := w.sup.Spawn(command, args, cfg.SpawnConfig)
	if err != nil {
		return nil, err
	}
	return &processWrapper{proc: p}, nil
}

// Processes implements Supervisor.Processes.
func (w *supervisorWrapper) Processes() []Process {
	procs := w.sup.Processes()
	out := make([]Process, len(procs))
	for i, p := range procs {
		out[i] = &processWrapper{proc: p}
	}
	return out
}

// Lookup implements Supervisor.Lookup.
//
//nolint:ireturn // Returns Process interface by design for testability (mockable).
func (w *supervisorWrapper) Lookup(pid int) (Process, bool) {
	p, ok := w.sup.Lookup(pid)
	if !ok {
		return nil, false
	}
	return &processWrapper{proc: p}, true
}

// Poll implements Supervisor.Poll. A request whose Process was not returned
// by this package reports NoPipe for both streams.
func (w *supervisorWrapper) Poll(reqs []PollRequest, timeout time.Duration) ([][2]Readiness, error) {
	creqs := make([]core.PollRequest, len(reqs))
	for i, r := range reqs {
		pw, ok := r.Process.(*processWrapper)
		if !ok || pw == nil {
			continue
		}
		creqs[i] = core.PollRequest{Process: pw.proc, Stdout: r.Stdout, Stderr: r.Stderr}
	}
	return w.sup.Poll(creqs, timeout)
}

// Shutdown implements Supervisor.Shutdown.
func (w *supervisorWrapper) Shutdown() error {
	return w.sup.Shutdown()
}

// processWrapper wraps core.Process to implement the Process interface.
type processWrapper struct {
	proc *core.Process
}

func (w *processWrapper) PID() int {
	return w.proc.PID()
}

func (w *processWrapper) Command() string {
	return w.proc.Command()
}

func (w *processWrapper) Wait() (ExitStatus, error) {
	return w.proc.Wait()
}

func (w *processWrapper) IsAlive() (bool, error) {
	return w.proc.IsAlive()
}

func (w *processWrapper) ExitStatus() (ExitStatus, bool, error) {
	return w.proc.ExitStatus()
}

func (w *processWrapper) Signal(sig syscall.Signal) (bool, error) {
	return w.proc.Signal(sig)
}

func (w *processWrapper) Kill(grace time.Duration) (bool, error) {
	return w.proc.Kill(grace)
}

func (w *processWrapper) WaitTimeout(ctx context.Context, timeout time.Duration) (ExitStatus, error) {
	return w.proc.WaitTimeout(ctx, timeout)
}

// Stdout returns nil rather than a typed nil when stdout is not piped.
//
//nolint:ireturn // Returns Stream interface by design for testability (mockable).
func (w *processWrapper) Stdout() Stream {
	if s := w.proc.Stdout(); s != nil {
		return s
	}
	return nil
}

//nolint:ireturn // Returns Stream interface by design for testability (mockable).
func (w *processWrapper) Stderr() Stream {
	if s := w.proc.Stderr(); s != nil {
		return s
	}
	return nil
}

func (w *processWrapper) Close() error {
	return w.proc.Close()
}
