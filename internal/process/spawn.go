package process

import (
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/giantswarm/procmux/internal/pipe"
	"github.com/giantswarm/procmux/internal/syserr"
)

// TargetKind selects where a child's output stream goes.
type TargetKind int

const (
	// TargetNull discards the stream.
	TargetNull TargetKind = iota
	// TargetFile writes the stream to a file, created or truncated.
	TargetFile
	// TargetPipe connects the stream to a pipe.Channel owned by the parent.
	TargetPipe
)

// Target is a redirect destination for stdout or stderr.
type Target struct {
	Kind TargetKind
	Path string
}

// SpawnConfig describes a child process.
type SpawnConfig struct {
	Command string
	Args    []string
	Dir     string
	// Env is appended to the parent environment.
	Env    []string
	Stdout Target
	Stderr Target
	// Detached starts the child in a new session.
	Detached bool
	// KillOnParentExit asks the OS to kill a non-detached child when the
	// parent dies, where supported.
	KillOnParentExit bool
	// ReadChunkSize is the read size for pipe targets; zero uses
	// pipe.DefaultReadChunkSize.
	ReadChunkSize int
	Logger        *slog.Logger
}

// Spawned is a started child process.
type Spawned struct {
	Tracker *Tracker
	// Stdout and Stderr are set for TargetPipe redirects only.
	Stdout *pipe.Channel
	Stderr *pipe.Channel
}

// Spawn starts a child process.
//
// Failures opening redirect targets return ErrStdioRedirectFailed and
// failures creating the child return ErrForkFailed; in both cases no child
// exists. A command that cannot be executed returns ErrChildExecFailed with
// the error code attached; no process remains in that case either.
func Spawn(cfg SpawnConfig) (*Spawned, error) {
	if cfg.Command == "" {
		return nil, ErrEmptyCommand
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	std, err := openStdio(cfg)
	if err != nil {
		return nil, err
	}
	// The parent never uses the child's ends.
	defer std.closeChildEnds()

	argv0 := resolveCommand(cfg.Command)
	argv := append([]string{cfg.Command}, cfg.Args...)

	pid, proc, err := startProcess(argv0, argv, cfg, std.childFiles())
	if err != nil {
		std.closeChannels()
		if isExecErrno(err) {
			return nil, syserr.Wrap(ErrChildExecFailed, "exec", err)
		}
		return nil, syserr.Wrap(ErrForkFailed, "fork/exec", err)
	}

	logger.Debug("process spawned",
		"pid", pid, "command", cfg.Command, "detached", cfg.Detached)

	return &Spawned{
		Tracker: newTracker(pid, proc, logger),
		Stdout:  std.stdoutCh,
		Stderr:  std.stderrCh,
	}, nil
}

// resolveCommand looks a bare command name up in PATH. A name that cannot be
// resolved is returned unchanged so that the failure is reported by the
// child's exec rather than by the parent.
func resolveCommand(command string) string {
	if filepath.Base(command) != command {
		return command
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return command
	}
	return path
}

// environ returns the parent environment with extra applied on top. When a
// key appears more than once the last entry wins.
func environ(extra []string) []string {
	env := append(os.Environ(), extra...)
	seen := make(map[string]int, len(env))
	out := make([]string, 0, len(env))
	for _, kv := range env {
		// Windows keeps per-drive directories in keys that start with '='.
		key := kv
		if i := strings.Index(kv[min(1, len(kv)):], "="); i >= 0 {
			key = kv[:i+1]
		}
		if runtime.GOOS == "windows" {
			key = strings.ToUpper(key)
		}
		if i, ok := seen[key]; ok {
			out[i] = kv
			continue
		}
		seen[key] = len(out)
		out = append(out, kv)
	}
	return out
}
