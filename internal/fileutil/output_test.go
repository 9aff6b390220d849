package fileutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestEnsureDirForFile(t *testing.T) {
	t.Parallel()

	tests := map[string][]string{
		"creates parent directory":            {"subdir", "file.txt"},
		"creates deeply nested parent":        {"a", "b", "c", "file.txt"},
		"succeeds when parent already exists": {"file.txt"},
	}

	for name, parts := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			filePath := filepath.Join(append([]string{t.TempDir()}, parts...)...)

			if err := EnsureDirForFile(filePath); err != nil {
				t.Fatalf("EnsureDirForFile() error: %v", err)
			}
			info, err := os.Stat(filepath.Dir(filePath))
			if err != nil {
				t.Fatalf("stat parent dir: %v", err)
			}
			if !info.IsDir() {
				t.Error("expected parent to be directory")
			}
		})
	}
}

func TestCreateOutput_Truncates(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "out.log")
	if err := EnsureDirForFile(path); err != nil {
		t.Fatalf("EnsureDirForFile() error: %v", err)
	}
	if err := os.WriteFile(path, []byte("old contents that are long\n"), 0o600); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	f, err := CreateOutput(path)
	if err != nil {
		t.Fatalf("CreateOutput() error: %v", err)
	}
	if _, err := f.WriteString("new\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "new\n" {
		t.Errorf("contents = %q, want %q", got, "new\n")
	}
}

func TestCreateOutput_Mode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fresh.log")
	f, err := CreateOutput(path)
	if err != nil {
		t.Fatalf("CreateOutput() error: %v", err)
	}
	_ = f.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	// The umask can only clear bits.
	if perm := info.Mode().Perm(); perm&^OutputFileMode != 0 {
		t.Errorf("mode = %v, want a subset of %v", perm, OutputFileMode)
	}
}

func TestCreateOutput_ParentIsFile(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	if _, err := CreateOutput(filepath.Join(blocker, "out.log")); err == nil {
		t.Fatal("expected error when the parent is a regular file")
	}
}
