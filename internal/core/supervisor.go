package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/giantswarm/procmux/internal/fileutil"
	"github.com/giantswarm/procmux/internal/pipe"
	"github.com/giantswarm/procmux/internal/poll"
	"github.com/giantswarm/procmux/internal/process"
	"github.com/giantswarm/procmux/internal/syserr"
	"github.com/giantswarm/procmux/internal/textstream"
)

// supervisorState represents the lifecycle state of a Supervisor.
type supervisorState uint32

const (
	supervisorReady        supervisorState = iota // Zero value; Spawn allowed
	supervisorShuttingDown                        // Shutdown called
)

// ErrShuttingDown is returned by Spawn once Shutdown has been called.
const ErrShuttingDown = syserr.Error("supervisor is shutting down")

// PollRequest selects which streams of a process a poll reports on.
type PollRequest struct {
	Process *Process
	Stdout  bool
	Stderr  bool
}

// Supervisor owns every process it spawns. It is safe for concurrent use by
// multiple goroutines.
type Supervisor struct {
	cfg      SupervisorConfig
	poller   *poll.Poller
	registry *Registry[*Process]
	state    atomic.Uint32
}

// NewSupervisor creates a Supervisor with the given configuration. A nil
// backend uses the platform default.
//
// Panics if cfg.Validate() reports any errors. Invalid configuration is a
// programmer error that should be caught at construction time.
func NewSupervisor(cfg SupervisorConfig, backend pipe.Backend) *Supervisor {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("procmux: invalid supervisor config: %v", err))
	}
	return &Supervisor{
		cfg:      cfg,
		poller:   poll.New(backend, Logger().With("subsystem", "poll")),
		registry: NewRegistry[*Process](),
	}
}

func (s *Supervisor) loadState() supervisorState {
	return supervisorState(s.state.Load())
}

// Spawn starts command with args and registers the new process.
func (s *Supervisor) Spawn(command string, args []string, sc SpawnConfig) (*Process, error) {
	if s.loadState() == supervisorShuttingDown {
		return nil, ErrShuttingDown
	}

	encName := sc.Encoding
	if encName == "" {
		encName = s.cfg.DefaultEncoding
	}
	enc, err := textstream.Lookup(encName)
	if err != nil {
		return nil, err
	}

	sp, err := process.Spawn(process.SpawnConfig{
		Command:          command,
		Args:             args,
		Dir:              sc.Dir,
		Env:              sc.Env,
		Stdout:           sc.Stdout,
		Stderr:           sc.Stderr,
		Detached:         sc.Detached,
		KillOnParentExit: s.cfg.KillOnParentExit,
		ReadChunkSize:    s.cfg.ReadChunkSize,
		Logger:           Logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", command, err)
	}

	p := newProcess(command, sp, enc, s.cfg.WaitPollInterval, Logger())
	if err := s.attach(p, sc.PIDFile); err != nil {
		if cerr := p.Close(); cerr != nil {
			p.log.Warn("failed to clean up process after spawn error", "error", cerr)
		}
		return nil, err
	}
	return p, nil
}

// attach writes the PID file and registers p.
func (s *Supervisor) attach(p *Process, pidPath string) error {
	if pidPath != "" {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PIDFileLockTimeout)
		defer cancel()
		pf, err := fileutil.WritePIDFile(ctx, pidPath, p.PID())
		if err != nil {
			return fmt.Errorf("spawn %s: %w", p.command, err)
		}
		p.pidFile = pf
	}

	ref, err := s.registry.Add(p.PID(), p)
	if errors.Is(err, ErrRegistryClosed) {
		return ErrShuttingDown
	}
	if err != nil {
		return err
	}
	p.ref = ref
	p.unregister = func(ref Ref) { s.registry.Remove(ref) }
	return nil
}

// Processes returns the processes that have not been closed.
func (s *Supervisor) Processes() []*Process {
	return s.registry.Values()
}

// Lookup returns the live process with the given ID.
func (s *Supervisor) Lookup(pid int) (*Process, bool) {
	return s.registry.Lookup(pid)
}

// Poll reports the readiness of the requested streams, one pair per
// request. See poll.Poller.Poll for the timeout semantics. Requested streams
// of a process that this supervisor does not own, or that has been closed,
// are reported as Closed.
//
// On Windows at most 64 streams can be waited for at once; a Poll that would
// block on more fails with pipe.ErrTooManyStreams.
func (s *Supervisor) Poll(reqs []PollRequest, timeout time.Duration) ([][2]pipe.Readiness, error) {
	preqs := make([]poll.Request, len(reqs))
	for i, r := range reqs {
		switch {
		case r.Process == nil:
		case !s.owns(r.Process):
			preqs[i] = poll.Request{Want: [2]bool{r.Stdout, r.Stderr}}
		default:
			preqs[i] = r.Process.pollRequest(r.Stdout, r.Stderr)
		}
	}
	return s.poller.Poll(preqs, timeout)
}

// owns reports whether p is registered with this supervisor.
func (s *Supervisor) owns(p *Process) bool {
	v, ok := s.registry.Get(p.ref)
	return ok && v == p
}

// Shutdown closes every registered process concurrently, killing those still
// running, and rejects later spawns. It returns the joined close errors.
func (s *Supervisor) Shutdown() error {
	s.state.Store(uint32(supervisorShuttingDown))

	procs := s.registry.Close()
	closeErrs := make([]error, len(procs))
	var wg sync.WaitGroup
	for idx, p := range procs {
		wg.Add(1)
		go func(pos int, proc *Process) {
			defer wg.Done()
			if err := proc.Close(); err != nil {
				closeErrs[pos] = fmt.Errorf("close pid %d: %w", proc.PID(), err)
			}
		}(idx, p)
	}
	wg.Wait()

	return errors.Join(closeErrs...)
}
