// Package platform resolves per-OS storage locations for model weights.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ResolveModelDir returns the directory model weights are cached in. An
// explicit override wins; otherwise the OS data directory is used.
func ResolveModelDir(override string) (string, error) {
	if override != "" {
		return filepath.Clean(override), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}

	return DefaultModelDirFor(runtime.GOOS, homeDir, os.Getenv("XDG_DATA_HOME"), os.Getenv("LOCALAPPDATA"))
}

func DefaultModelDirFor(goos, homeDir, xdgDataHome, localAppData string) (string, error) {
	dataDir, err := defaultDataDirFor(goos, homeDir, xdgDataHome, localAppData)
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "models"), nil
}

func defaultDataDirFor(goos, homeDir, xdgDataHome, localAppData string) (string, error) {
	if homeDir == "" {
		return "", errors.New("home directory is empty")
	}

	switch goos {
	case "linux":
		if xdgDataHome != "" {
			return filepath.Join(xdgDataHome, "vidscribe"), nil
		}
		return filepath.Join(homeDir, ".local", "share", "vidscribe"), nil
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "vidscribe"), nil
	case "windows":
		if localAppData != "" {
			return filepath.Join(localAppData, "vidscribe"), nil
		}
		return filepath.Join(homeDir, "AppData", "Local", "vidscribe"), nil
	default:
		return "", fmt.Errorf("unsupported OS: %s", goos)
	}
}
