// ABOUTME: XDG-based data directory resolution for the pulse CLI.
// ABOUTME: Checks XDG_DATA_HOME, falls back to ~/.local/share/pulse.
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultDataDir returns the default data directory for the content database.
// It checks XDG_DATA_HOME first, then falls back to ~/.local/share/pulse.
func defaultDataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "pulse"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, ".local", "share", "pulse"), nil
}
