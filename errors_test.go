package procmux_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/giantswarm/procmux"
)

var publicErrors = []struct {
	name string
	err  error
}{
	{"ErrChildExecFailed", procmux.ErrChildExecFailed},
	{"ErrEmptyCommand", procmux.ErrEmptyCommand},
	{"ErrForkFailed", procmux.ErrForkFailed},
	{"ErrMultiplexWait", procmux.ErrMultiplexWait},
	{"ErrPIDFileLocked", procmux.ErrPIDFileLocked},
	{"ErrPermissionDenied", procmux.ErrPermissionDenied},
	{"ErrProcessClosed", procmux.ErrProcessClosed},
	{"ErrShuttingDown", procmux.ErrShuttingDown},
	{"ErrSignalFailed", procmux.ErrSignalFailed},
	{"ErrStdioRedirectFailed", procmux.ErrStdioRedirectFailed},
	{"ErrStreamClosed", procmux.ErrStreamClosed},
	{"ErrTooManyStreams", procmux.ErrTooManyStreams},
	{"ErrUnknownEncoding", procmux.ErrUnknownEncoding},
	{"ErrWaitFailed", procmux.ErrWaitFailed},
	{"ErrWaitTimeout", procmux.ErrWaitTimeout},
}

// TestPublicErrorConstants verifies that every exported error constant:
//   - implements the error interface (Error() returns a non-empty string)
//   - matches itself via errors.Is
//   - matches itself when wrapped via fmt.Errorf %w
func TestPublicErrorConstants(t *testing.T) {
	t.Parallel()

	for _, tc := range publicErrors {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if tc.err == nil {
				t.Fatalf("%s is nil", tc.name)
			}
			if msg := tc.err.Error(); msg == "" {
				t.Errorf("%s.Error() returned empty string", tc.name)
			}
			if !errors.Is(tc.err, tc.err) {
				t.Errorf("errors.Is(%s, %s) = false, want true (self-match)", tc.name, tc.name)
			}
			wrapped := fmt.Errorf("wrapping: %w", tc.err)
			if !errors.Is(wrapped, tc.err) {
				t.Errorf("errors.Is(wrapped %s) = false, want true", tc.name)
			}
		})
	}
}

// TestPublicErrorConstantsAreDistinct verifies that no two exported error
// constants are equal to each other.
func TestPublicErrorConstantsAreDistinct(t *testing.T) {
	t.Parallel()

	for i, a := range publicErrors {
		for _, b := range publicErrors[i+1:] {
			if errors.Is(a.err, b.err) || errors.Is(b.err, a.err) {
				t.Errorf("%s and %s match each other: constants must be distinct", a.name, b.name)
			}
		}
	}
}
