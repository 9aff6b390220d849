package core

import (
	"strings"
	"testing"
	"time"
)

func validSupervisorConfig() SupervisorConfig {
	return SupervisorConfig{
		ReadChunkSize:      64 * 1024,
		DefaultEncoding:    "UTF-8",
		WaitPollInterval:   10 * time.Millisecond,
		PIDFileLockTimeout: time.Second,
	}
}

func TestSupervisorConfig_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := validSupervisorConfig().Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	tests := map[string]struct {
		modify       func(c *SupervisorConfig)
		wantContains string
	}{
		"zero read chunk size": {
			modify:       func(c *SupervisorConfig) { c.ReadChunkSize = 0 },
			wantContains: "read chunk size",
		},
		"unknown default encoding": {
			modify:       func(c *SupervisorConfig) { c.DefaultEncoding = "no-such-charset" },
			wantContains: "default encoding",
		},
		"zero wait poll interval": {
			modify:       func(c *SupervisorConfig) { c.WaitPollInterval = 0 },
			wantContains: "wait poll interval",
		},
		"negative pid file lock timeout": {
			modify:       func(c *SupervisorConfig) { c.PIDFileLockTimeout = -1 },
			wantContains: "pid file lock timeout",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := validSupervisorConfig()
			tc.modify(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantContains) {
				t.Errorf("error %q does not contain %q", err, tc.wantContains)
			}
		})
	}

	t.Run("reports every violation", func(t *testing.T) {
		t.Parallel()
		err := SupervisorConfig{DefaultEncoding: "UTF-8"}.Validate()
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		for _, want := range []string{"read chunk size", "wait poll interval", "pid file lock timeout"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error %q does not contain %q", err, want)
			}
		}
	})
}

func TestNewSupervisor_PanicsOnInvalidConfig(t *testing.T) {
	t.Parallel()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic but didn't get one")
		}
		if msg, _ := r.(string); !strings.HasPrefix(msg, "procmux: invalid supervisor config:") {
			t.Errorf("panic message = %v", r)
		}
	}()
	NewSupervisor(SupervisorConfig{}, nil)
}
