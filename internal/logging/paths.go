package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultLogDir returns the fallback log directory (~/.codevector/logs/)
// used when no log.file is configured but one is needed, e.g. by the
// `codevector logs` CLI command run with no --file flag.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".codevector", "logs")
	}
	return filepath.Join(home, ".codevector", "logs")
}

// DefaultLogPath returns the fallback server log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "server.log")
}

// EnsureLogDirFor creates the directory containing path, if needed.
func EnsureLogDirFor(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// FindLogFile resolves the log file to view: the explicit path if given,
// otherwise the default path.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}
		return "", fmt.Errorf("log file not found: %s", explicit)
	}

	path := DefaultLogPath()
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("no log file found at %s; pass log.file in the config or --file explicitly", path)
}
