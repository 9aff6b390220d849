package process

import (
	"syscall"
	"testing"
)

func TestExitStatus(t *testing.T) {
	t.Parallel()

	type testCase struct {
		status       ExitStatus
		wantExited   bool
		wantCode     int
		wantSignal   syscall.Signal
		wantStringer string
	}

	tests := map[string]testCase{
		"success": {
			status:       0,
			wantExited:   true,
			wantCode:     0,
			wantStringer: "exit status 0",
		},
		"exit code": {
			status:       42,
			wantExited:   true,
			wantCode:     42,
			wantStringer: "exit status 42",
		},
		"killed": {
			status:       signaledStatus(syscall.SIGKILL),
			wantCode:     -1,
			wantSignal:   syscall.SIGKILL,
			wantStringer: "signal: " + syscall.SIGKILL.String(),
		},
		"terminated": {
			status:       -15,
			wantCode:     -1,
			wantSignal:   syscall.SIGTERM,
			wantStringer: "signal: " + syscall.SIGTERM.String(),
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := tc.status.Exited(); got != tc.wantExited {
				t.Errorf("Exited() = %v, want %v", got, tc.wantExited)
			}
			if got := tc.status.Signaled(); got == tc.wantExited {
				t.Errorf("Signaled() = %v, want %v", got, !tc.wantExited)
			}
			if got := tc.status.Code(); got != tc.wantCode {
				t.Errorf("Code() = %d, want %d", got, tc.wantCode)
			}
			if got := tc.status.Signal(); got != tc.wantSignal {
				t.Errorf("Signal() = %v, want %v", got, tc.wantSignal)
			}
			if got := tc.status.String(); got != tc.wantStringer {
				t.Errorf("String() = %q, want %q", got, tc.wantStringer)
			}
		})
	}
}
