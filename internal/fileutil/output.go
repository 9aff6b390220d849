package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// OutputFileMode is the permission used for created redirect targets.
const OutputFileMode os.FileMode = 0o644

// EnsureDirForFile creates the parent directory of filePath if it does not
// already exist, ensuring the file can be created without a missing-directory error.
func EnsureDirForFile(filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure dir for %s: %w", filePath, err)
	}
	return nil
}

// CreateOutput opens path for writing, creating or truncating it.
func CreateOutput(path string) (*os.File, error) {
	if err := EnsureDirForFile(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, OutputFileMode)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", path, err)
	}
	return f, nil
}
