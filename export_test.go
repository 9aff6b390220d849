package procmux

import (
	"time"

	"github.com/giantswarm/procmux/internal/process"
)

// ConfigSnapshot holds a copy of supervisorConfig fields for test
// assertions. Exported only via export_test.go so that the _test package can
// verify option closures actually mutate the config without accessing
// internals.
type ConfigSnapshot struct {
	ReadChunkSize      int
	DefaultEncoding    string
	KillOnParentExit   bool
	WaitPollInterval   time.Duration
	PIDFileLockTimeout time.Duration
}

// ApplyOptionsForTesting creates a default supervisorConfig, applies the
// given options, and returns a ConfigSnapshot of the result.
func ApplyOptionsForTesting(opts ...SupervisorOption) ConfigSnapshot {
	cfg := defaultSupervisorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return ConfigSnapshot{
		ReadChunkSize:      cfg.ReadChunkSize,
		DefaultEncoding:    cfg.DefaultEncoding,
		KillOnParentExit:   cfg.KillOnParentExit,
		WaitPollInterval:   cfg.WaitPollInterval,
		PIDFileLockTimeout: cfg.PIDFileLockTimeout,
	}
}

// SpawnSnapshot holds a copy of spawnConfig fields for test assertions.
// Redirect kinds are reported as "null", "file" or "pipe".
type SpawnSnapshot struct {
	Stdout     string
	StdoutPath string
	Stderr     string
	StderrPath string
	Detached   bool
	Dir        string
	Env        []string
	PIDFile    string
	Encoding   string
}

// ApplySpawnOptionsForTesting applies the given options to an empty
// spawnConfig and returns a SpawnSnapshot of the result.
func ApplySpawnOptionsForTesting(opts ...SpawnOption) SpawnSnapshot {
	var cfg spawnConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return SpawnSnapshot{
		Stdout:     targetKindName(cfg.Stdout.Kind),
		StdoutPath: cfg.Stdout.Path,
		Stderr:     targetKindName(cfg.Stderr.Kind),
		StderrPath: cfg.Stderr.Path,
		Detached:   cfg.Detached,
		Dir:        cfg.Dir,
		Env:        cfg.Env,
		PIDFile:    cfg.PIDFile,
		Encoding:   cfg.Encoding,
	}
}

func targetKindName(k process.TargetKind) string {
	switch k {
	case process.TargetFile:
		return "file"
	case process.TargetPipe:
		return "pipe"
	default:
		return "null"
	}
}
