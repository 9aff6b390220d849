//go:build unix

package procmux_test

import (
	"context"
	"errors"
	"slices"
	"syscall"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/procmux"
)

func newSupervisor(t *testing.T, opts ...procmux.SupervisorOption) procmux.Supervisor {
	t.Helper()
	sup := procmux.NewSupervisor(opts...)
	t.Cleanup(func() {
		if err := sup.Shutdown(); err != nil {
			t.Errorf("Shutdown() error: %v", err)
		}
	})
	return sup
}

// drain multiplexes the stdout of every process until all of them reach end
// of output, returning the lines read per process.
func drain(t *testing.T, sup procmux.Supervisor, procs []procmux.Process) [][]string {
	t.Helper()

	reqs := make([]procmux.PollRequest, len(procs))
	for i, p := range procs {
		reqs[i] = procmux.PollRequest{Process: p, Stdout: true}
	}
	out := make([][]string, len(procs))
	deadline := time.Now().Add(10 * time.Second)

	for {
		ready, err := sup.Poll(reqs, time.Second)
		if err != nil {
			t.Fatalf("Poll() error: %v", err)
		}
		open := 0
		for i, r := range ready {
			switch r[0] {
			case procmux.Ready:
				lines, err := procs[i].Stdout().ReadAvailable()
				if err != nil {
					t.Fatalf("ReadAvailable() error: %v", err)
				}
				out[i] = append(out[i], lines...)
				open++
			case procmux.Silent, procmux.TimedOut:
				open++
			}
		}
		if open == 0 {
			return out
		}
		if time.Now().After(deadline) {
			t.Fatalf("streams still open after deadline: %v", ready)
		}
	}
}

func TestMultiplexedOutput(t *testing.T) {
	t.Parallel()

	sup := newSupervisor(t)
	scripts := []string{
		"echo a1; sleep 0.05; echo a2",
		"printf 'b1\\r\\nb2'",
		"sleep 0.1; echo c1",
	}
	var procs []procmux.Process
	for _, s := range scripts {
		p, err := sup.Spawn("sh", []string{"-c", s}, procmux.WithStdoutPipe())
		if err != nil {
			t.Fatalf("Spawn(%q) error: %v", s, err)
		}
		procs = append(procs, p)
	}

	got := drain(t, sup, procs)
	want := [][]string{{"a1", "a2"}, {"b1", "b2"}, {"c1"}}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Errorf("process %d lines = %q, want %q", i, got[i], want[i])
		}
		if !procs[i].Stdout().IsEOF() {
			t.Errorf("process %d: IsEOF() = false after drain", i)
		}
	}
}

func TestUnpipedStreamsAreNil(t *testing.T) {
	t.Parallel()

	sup := newSupervisor(t)
	p, err := sup.Spawn("true", nil)
	if err != nil {
		t.Fatalf("Spawn() error: %v", err)
	}
	if p.Stdout() != nil || p.Stderr() != nil {
		t.Error("streams of an unpiped process are not nil")
	}

	ready, err := sup.Poll([]procmux.PollRequest{{Process: p, Stdout: true, Stderr: true}}, 0)
	if err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if ready[0] != [2]procmux.Readiness{procmux.NoPipe, procmux.NoPipe} {
		t.Errorf("Poll() = %v, want nopipe for both", ready[0])
	}
}

func TestConcurrentWaitAndSignal(t *testing.T) {
	t.Parallel()

	sup := newSupervisor(t)
	p, err := sup.Spawn("sleep", []string{"30"})
	if err != nil {
		t.Fatalf("Spawn() error: %v", err)
	}

	statuses := make([]procmux.ExitStatus, 4)
	var g errgroup.Group
	for i := range statuses {
		g.Go(func() error {
			s, err := p.Wait()
			statuses[i] = s
			return err
		})
	}
	g.Go(func() error {
		_, err := p.Signal(syscall.SIGTERM)
		return err
	})
	if err := g.Wait(); err != nil {
		t.Fatalf("error: %v", err)
	}

	for i, s := range statuses {
		if s.Signal() != syscall.SIGTERM {
			t.Errorf("waiter %d status = %v, want SIGTERM", i, s)
		}
	}
	if ok, err := p.Signal(syscall.SIGTERM); ok || err != nil {
		t.Errorf("Signal() after reap = %v, %v; want false, nil", ok, err)
	}
	if killed, err := p.Kill(time.Second); killed || err != nil {
		t.Errorf("Kill() after reap = %v, %v; want false, nil", killed, err)
	}
}

func TestWaitTimeout(t *testing.T) {
	t.Parallel()

	sup := newSupervisor(t, procmux.WithWaitPollInterval(5*time.Millisecond))
	p, err := sup.Spawn("sleep", []string{"30"})
	if err != nil {
		t.Fatalf("Spawn() error: %v", err)
	}

	if _, err := p.WaitTimeout(context.Background(), 50*time.Millisecond); !errors.Is(err, procmux.ErrWaitTimeout) {
		t.Fatalf("WaitTimeout() error = %v, want ErrWaitTimeout", err)
	}
	if alive, err := p.IsAlive(); !alive || err != nil {
		t.Fatalf("IsAlive() after timeout = %v, %v; want true, nil", alive, err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if _, ok := sup.Lookup(p.PID()); ok {
		t.Error("Lookup() found a closed process")
	}
	if _, err := p.WaitTimeout(context.Background(), time.Second); !errors.Is(err, procmux.ErrProcessClosed) {
		t.Errorf("WaitTimeout() after Close error = %v, want ErrProcessClosed", err)
	}
}

func TestSpawnExecFailure(t *testing.T) {
	t.Parallel()

	sup := newSupervisor(t)
	_, err := sup.Spawn("procmux-no-such-command", nil)
	if !errors.Is(err, procmux.ErrChildExecFailed) {
		t.Fatalf("Spawn() error = %v, want ErrChildExecFailed", err)
	}
	var errno syscall.Errno
	if !errors.As(err, &errno) || errno != syscall.ENOENT {
		t.Errorf("errno = %v, want ENOENT", errno)
	}
	if n := len(sup.Processes()); n != 0 {
		t.Errorf("Processes() = %d after failed spawn, want 0", n)
	}
}
