package fileutil

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestPIDFile_WriteAndRemove(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run", "child.pid")
	pf, err := WritePIDFile(context.Background(), path, 4242)
	if err != nil {
		t.Fatalf("WritePIDFile() error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pid file: %v", err)
	}
	if strings.TrimSpace(string(got)) != "4242" {
		t.Errorf("pid file = %q, want 4242", got)
	}
	if pf.Path() != path {
		t.Errorf("Path() = %q, want %q", pf.Path(), path)
	}

	pf.Remove(slog.Default())
	pf.Remove(slog.Default())
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("pid file still exists after Remove: %v", err)
	}
}

func TestPIDFile_Locked(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "child.pid")
	first, err := WritePIDFile(context.Background(), path, 1)
	if err != nil {
		t.Fatalf("WritePIDFile() error: %v", err)
	}
	defer first.Remove(slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	if _, err := WritePIDFile(ctx, path, 2); !errors.Is(err, ErrPIDFileLocked) {
		t.Fatalf("second WritePIDFile() error = %v, want ErrPIDFileLocked", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pid file: %v", err)
	}
	if strings.TrimSpace(string(got)) != "1" {
		t.Errorf("pid file = %q, want the first holder's pid", got)
	}
}

func TestPIDFile_NilRemove(t *testing.T) {
	t.Parallel()

	var pf *PIDFile
	pf.Remove(slog.Default())
}
