package process

import (
	"slices"
	"strings"
	"testing"
)

func TestEnvironLastEntryWins(t *testing.T) {
	t.Setenv("PROCMUX_ENV_A", "parent")

	env := environ([]string{"PROCMUX_ENV_A=first", "PROCMUX_ENV_B=x", "PROCMUX_ENV_A=second"})

	var got []string
	for _, kv := range env {
		if strings.HasPrefix(kv, "PROCMUX_ENV_") {
			got = append(got, kv)
		}
	}
	want := []string{"PROCMUX_ENV_A=second", "PROCMUX_ENV_B=x"}
	if !slices.Equal(got, want) {
		t.Errorf("environ() entries = %v, want %v", got, want)
	}
}
