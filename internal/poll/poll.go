package poll

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/giantswarm/procmux/internal/pipe"
	"github.com/giantswarm/procmux/internal/syserr"
)

// Infinite makes Poll wait until a stream is ready.
const Infinite time.Duration = -1

// ErrMultiplexWait wraps a failure of the backend's probe or wait.
const ErrMultiplexWait = syserr.Error("multiplexed wait failed")

// Request names the stdout and stderr channels of one process. An entry with
// Want false is reported as NoPipe. A wanted entry whose channel is nil was
// detached from its process and is reported as Closed.
type Request struct {
	Streams [2]*pipe.Channel
	Want    [2]bool
}

// Poller runs the readiness algorithm over a Backend.
type Poller struct {
	backend pipe.Backend
	log     *slog.Logger
}

// New creates a Poller. A nil backend uses pipe.DefaultBackend and a nil
// logger uses slog.Default.
func New(backend pipe.Backend, logger *slog.Logger) *Poller {
	if backend == nil {
		backend = pipe.DefaultBackend()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{backend: backend, log: logger}
}

type slot struct {
	req, stream int
	ch          *pipe.Channel
}

// Poll returns one readiness pair per request, in request order. A negative
// timeout waits forever and a zero timeout never blocks. When no requested
// stream can become ready Poll returns immediately.
func (p *Poller) Poll(reqs []Request, timeout time.Duration) ([][2]pipe.Readiness, error) {
	result := make([][2]pipe.Readiness, len(reqs))

	// Phase 1: classify from buffered state.
	var silent []slot
	ready := false
	for i, r := range reqs {
		for s := range 2 {
			if !r.Want[s] {
				result[i][s] = pipe.NoPipe
				continue
			}
			// Classify reports a nil channel as Closed.
			state := r.Streams[s].Classify()
			result[i][s] = state
			switch state {
			case pipe.Ready:
				ready = true
			case pipe.Silent:
				silent = append(silent, slot{req: i, stream: s, ch: r.Streams[s]})
			}
		}
	}
	if ready || len(silent) == 0 {
		return result, nil
	}

	// Phase 2: one non-blocking attempt on every silent stream without a
	// read in flight.
	for _, sl := range silent {
		if sl.ch.Pending() {
			continue
		}
		ok, err := p.backend.Probe(sl.ch)
		if err != nil {
			return nil, fmt.Errorf("%w: probe %s: %w", ErrMultiplexWait, sl.ch.Name(), err)
		}
		if ok {
			result[sl.req][sl.stream] = pipe.Ready
			ready = true
		}
	}
	if ready {
		return result, nil
	}

	// Phase 3: block until something fires or the timeout elapses.
	chs := make([]*pipe.Channel, len(silent))
	for i, sl := range silent {
		chs[i] = sl.ch
	}
	fired, err := p.backend.Wait(chs, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMultiplexWait, err)
	}
	if len(fired) == 0 {
		for _, sl := range silent {
			result[sl.req][sl.stream] = pipe.TimedOut
		}
		p.log.Debug("poll timed out", "streams", len(silent), "timeout", timeout)
		return result, nil
	}
	for _, i := range fired {
		sl := silent[i]
		result[sl.req][sl.stream] = pipe.Ready
	}
	return result, nil
}
