//go:build integration

// Package testutil holds helpers shared by the procmux integration tests.
package testutil

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/giantswarm/procmux"
)

// SetupTestLogging installs a text logger on stderr at the level named by
// PROCMUX_LOG_LEVEL (INFO when unset or invalid).
func SetupTestLogging() {
	levelStr := os.Getenv("PROCMUX_LOG_LEVEL")
	if levelStr == "" {
		levelStr = "INFO"
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	procmux.SetLogger(slog.Default().With("component", "procmux"))
}

// Spawn starts a process and fails the test on error. The process is
// closed when the test ends.
func Spawn(t *testing.T, sup procmux.Supervisor, command string, args []string, opts ...procmux.SpawnOption) procmux.Process {
	t.Helper()

	p, err := sup.Spawn(command, args, opts...)
	if err != nil {
		t.Fatalf("spawn %s: %v", command, err)
	}
	t.Cleanup(func() {
		if err := p.Close(); err != nil {
			t.Logf("close pid %d: %v", p.PID(), err)
		}
	})
	return p
}

// Drain multiplexes the requested streams of procs until all of them reach
// end of output and returns the lines read, indexed by process and stream.
// It fails the test if that takes longer than timeout.
func Drain(t *testing.T, sup procmux.Supervisor, reqs []procmux.PollRequest, timeout time.Duration) [][2][]string {
	t.Helper()

	out := make([][2][]string, len(reqs))
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			t.Fatalf("streams still open after %s", timeout)
		}
		ready, err := sup.Poll(reqs, remaining)
		if err != nil {
			t.Fatalf("poll: %v", err)
		}

		open := 0
		for i, pair := range ready {
			for s, state := range pair {
				switch state {
				case procmux.Ready:
					stream := reqs[i].Process.Stdout()
					if s == 1 {
						stream = reqs[i].Process.Stderr()
					}
					lines, err := stream.ReadAvailable()
					if err != nil {
						t.Fatalf("read pid %d: %v", reqs[i].Process.PID(), err)
					}
					out[i][s] = append(out[i][s], lines...)
					open++
				case procmux.Silent:
					open++
				}
			}
		}
		if open == 0 {
			return out
		}
	}
}
