package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/giantswarm/procmux"
)

var streamNames = [2]string{"stdout", "stderr"}

// muxer prints the piped output of a set of processes from one goroutine.
type muxer struct {
	sup   procmux.Supervisor
	procs []procmux.Process
	specs []ProcessSpec
	out   io.Writer
	// tick bounds each poll so that cancellation is noticed.
	tick  time.Duration
	width int
}

func newMuxer(sup procmux.Supervisor, procs []procmux.Process, specs []ProcessSpec, out io.Writer, tick time.Duration) *muxer {
	width := 0
	for _, s := range specs {
		width = max(width, len(s.Name)+1)
	}
	return &muxer{sup: sup, procs: procs, specs: specs, out: out, tick: tick, width: width}
}

// run prints output until every piped stream has reached end of output or
// ctx is done.
func (m *muxer) run(ctx context.Context) error {
	reqs := make([]procmux.PollRequest, len(m.procs))
	for i, p := range m.procs {
		reqs[i] = procmux.PollRequest{Process: p, Stdout: true, Stderr: true}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ready, err := m.sup.Poll(reqs, m.tick)
		if err != nil {
			return err
		}
		open := 0
		for i, pair := range ready {
			for s, state := range pair {
				switch state {
				case procmux.Ready:
					if err := m.print(i, s); err != nil {
						return err
					}
					open++
				case procmux.Silent, procmux.TimedOut:
					open++
				}
			}
		}
		if open == 0 {
			return nil
		}
	}
}

func (m *muxer) print(i, s int) error {
	stream := m.procs[i].Stdout()
	if s == 1 {
		stream = m.procs[i].Stderr()
	}
	lines, err := stream.ReadAvailable()
	label := m.specs[i].label(streamNames[s], m.width)
	for _, line := range lines {
		if _, werr := fmt.Fprintf(m.out, "%s| %s\n", label, line); werr != nil {
			return werr
		}
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", m.specs[i].Name, streamNames[s], err)
	}
	return nil
}

// wait collects the exit status of every process, checking ctx every tick.
// It returns the statuses in process order.
func (m *muxer) wait(ctx context.Context) ([]procmux.ExitStatus, error) {
	statuses := make([]procmux.ExitStatus, len(m.procs))
	for i, p := range m.procs {
		for {
			status, err := p.WaitTimeout(ctx, m.tick)
			if errors.Is(err, procmux.ErrWaitTimeout) {
				continue
			}
			if err != nil {
				return statuses, fmt.Errorf("wait for %s: %w", m.specs[i].Name, err)
			}
			statuses[i] = status
			break
		}
	}
	return statuses, nil
}
