package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/text/encoding"

	"github.com/giantswarm/procmux/internal/fileutil"
	"github.com/giantswarm/procmux/internal/pipe"
	"github.com/giantswarm/procmux/internal/poll"
	"github.com/giantswarm/procmux/internal/process"
	"github.com/giantswarm/procmux/internal/syserr"
	"github.com/giantswarm/procmux/internal/textstream"
)

// ErrProcessClosed is returned by Signal, Kill and WaitTimeout after Close.
const ErrProcessClosed = syserr.Error("process handle is closed")

const (
	stdoutIdx = 0
	stderrIdx = 1
)

// Process is a spawned child owned by a Supervisor: its exit-status tracker,
// the parent ends of its output pipes and its optional PID file.
//
// The tracker methods are safe for concurrent use. Streams, like the
// channels under them, must be used from one goroutine at a time.
type Process struct {
	command  string
	tracker  *process.Tracker
	interval time.Duration

	// channels is the stream table polled by the Supervisor. A channel is
	// removed from it when its stream is closed, and a poll then reports
	// the stream as closed.
	channels [2]*pipe.Channel
	streams  [2]*textstream.Stream
	pidFile  *fileutil.PIDFile

	ref        Ref
	unregister func(Ref)
	closed     atomic.Bool

	log *slog.Logger
}

// newProcess wires the streams of a spawned child. enc decodes both streams.
func newProcess(command string, sp *process.Spawned, enc encoding.Encoding, interval time.Duration, logger *slog.Logger) *Process {
	p := &Process{
		command:  command,
		tracker:  sp.Tracker,
		interval: interval,
		log:      logger.With("pid", sp.Tracker.PID(), "command", command),
	}
	for i, ch := range [2]*pipe.Channel{sp.Stdout, sp.Stderr} {
		if ch == nil {
			continue
		}
		p.channels[i] = ch
		p.streams[i] = textstream.New(ch, enc)
		ch.OnClose(func() {
			p.channels[i] = nil
			p.log.Debug("stream detached", "stream", ch.Name())
		})
	}
	return p
}

// PID returns the process ID.
func (p *Process) PID() int {
	return p.tracker.PID()
}

// Command returns the command the process was spawned with.
func (p *Process) Command() string {
	return p.command
}

// Wait blocks until the process terminates and returns its exit status.
func (p *Process) Wait() (process.ExitStatus, error) {
	return p.tracker.Wait()
}

// IsAlive reports whether the process is still running without blocking.
func (p *Process) IsAlive() (bool, error) {
	return p.tracker.IsAlive()
}

// ExitStatus returns the exit status if it is available without blocking.
func (p *Process) ExitStatus() (process.ExitStatus, bool, error) {
	return p.tracker.ExitStatus()
}

// Signal delivers sig and reports whether the process was alive to get it.
func (p *Process) Signal(sig syscall.Signal) (bool, error) {
	if p.closed.Load() {
		return false, ErrProcessClosed
	}
	return p.tracker.Signal(sig)
}

// Kill forcibly terminates the process and reports whether this call
// killed it.
func (p *Process) Kill(grace time.Duration) (bool, error) {
	if p.closed.Load() {
		return false, ErrProcessClosed
	}
	return p.tracker.Kill(grace)
}

// WaitTimeout waits for the process to exit for at most timeout. On timeout
// the error matches process.ErrWaitTimeout and the process keeps running.
func (p *Process) WaitTimeout(ctx context.Context, timeout time.Duration) (process.ExitStatus, error) {
	if p.closed.Load() {
		return 0, ErrProcessClosed
	}
	return process.WaitExited(ctx, p.tracker, p.interval, timeout)
}

// Stdout returns the decoded stdout stream, or nil if stdout is not piped.
func (p *Process) Stdout() *textstream.Stream {
	return p.streams[stdoutIdx]
}

// Stderr returns the decoded stderr stream, or nil if stderr is not piped.
func (p *Process) Stderr() *textstream.Stream {
	return p.streams[stderrIdx]
}

// pollRequest builds the poll request for the selected streams. A stream
// that was never piped is not wanted and reports NoPipe.
func (p *Process) pollRequest(stdout, stderr bool) poll.Request {
	return poll.Request{
		Streams: p.channels,
		Want: [2]bool{
			stdout && p.streams[stdoutIdx] != nil,
			stderr && p.streams[stderrIdx] != nil,
		},
	}
}

// Close releases the process. A child that is still running is killed
// first, and in every case the exit status is collected so the child is
// never left as a zombie. Streams are closed, the PID file is removed and
// the process is unregistered. Close is idempotent.
func (p *Process) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error

	alive, err := p.tracker.IsAlive()
	switch {
	case err != nil:
		errs = append(errs, err)
	case alive:
		p.log.Warn("closing process that is still running; killing it")
		if _, err := p.tracker.Kill(0); err != nil {
			errs = append(errs, fmt.Errorf("kill %s: %w", p.command, err))
		}
	}
	if len(errs) == 0 && !p.tracker.Collected() {
		if _, err := p.tracker.Wait(); err != nil {
			errs = append(errs, err)
		}
	}

	for _, s := range p.streams {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil && !errors.Is(err, pipe.ErrClosed) {
			errs = append(errs, err)
		}
	}

	p.pidFile.Remove(p.log)
	if p.unregister != nil {
		p.unregister(p.ref)
	}

	return errors.Join(errs...)
}
