package session

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDataDir resolves the data directory in priority order:
// 1. SOKRATES_DATA environment variable
// 2. $XDG_DATA_HOME/sokrates
// 3. ~/.local/share/sokrates
func DefaultDataDir() (string, error) {
	if p := os.Getenv("SOKRATES_DATA"); p != "" {
		return p, nil
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, "sokrates"), nil
}
