package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDir is the local directory downloads are stored in and uploads are
// read from when none is configured.
func DefaultDir() string {
	p, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(p, "tftp")
}

// EnsureDir creates dir when it does not exist yet.
func EnsureDir(dir string) (string, error) {
	if _, err := os.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("error cheking if dir exists: %w", err)
		}

		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("error while creating tftp dir: %w", err)
		}
	}

	return dir, nil
}
