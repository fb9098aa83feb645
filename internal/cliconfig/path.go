package cliconfig

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bft-labs/swga/internal/domain"
)

// PathRule describes what a configured path must point at.
type PathRule int

const (
	// PathFile must be an existing regular file.
	PathFile PathRule = iota
	// PathDir must be a directory; it is created when missing.
	PathDir
	// PathExecutable must resolve to an executable, through PATH when it
	// has no directory component.
	PathExecutable
	// PathOptional may be empty; when set it must be an existing file.
	PathOptional
)

// ValidatePath checks path against rule and returns it cleaned (or, for
// executables, resolved).
func ValidatePath(path string, rule PathRule) (string, error) {
	if path == "" {
		if rule == PathOptional {
			return "", nil
		}
		return "", fmt.Errorf("%w: empty path", domain.ErrInvalidConfig)
	}
	path = expandHome(path)

	switch rule {
	case PathFile, PathOptional:
		fi, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
		}
		if !fi.Mode().IsRegular() {
			return "", fmt.Errorf("%w: %s is not a regular file", domain.ErrInvalidConfig, path)
		}
	case PathDir:
		if err := os.MkdirAll(path, 0o755); err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
		}
	case PathExecutable:
		resolved, err := exec.LookPath(path)
		if err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
		}
		return resolved, nil
	}
	return filepath.Clean(path), nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(h, strings.TrimPrefix(path, "~"))
}
