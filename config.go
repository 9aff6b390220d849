package procmux

import "github.com/giantswarm/procmux/internal/core"

// supervisorConfig holds configuration for a Supervisor. This unexported type
// wraps core.SupervisorConfig via embedding, keeping internal/core types out
// of the public API signature.
type supervisorConfig struct {
	core.SupervisorConfig
}

// spawnConfig holds the per-process settings collected from SpawnOptions.
type spawnConfig struct {
	core.SpawnConfig
}

// defaultSupervisorConfig returns a supervisorConfig populated with all
// default values. Both NewSupervisor and test helpers use this.
func defaultSupervisorConfig() supervisorConfig {
	return supervisorConfig{core.SupervisorConfig{
		ReadChunkSize:      DefaultReadChunkSize,
		DefaultEncoding:    DefaultEncoding,
		KillOnParentExit:   true,
		WaitPollInterval:   DefaultWaitPollInterval,
		PIDFileLockTimeout: DefaultPIDFileLockTimeout,
	}}
}
