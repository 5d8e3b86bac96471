package session

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.wtox, or $WTOX_HOME when set.
func BaseDir() string {
	if dir := os.Getenv("WTOX_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".wtox")
}

// Dir returns the session-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "sessions", name)
}

// ConfigPath returns the session config file path.
func ConfigPath(name string) string {
	return filepath.Join(Dir(name), "config.toml")
}

// LogDir returns the log directory for a session.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the log file path of a binary within a session.
func LogPath(name, binary string) string {
	return filepath.Join(LogDir(name), binary+".log")
}

// GlobalConfigPath returns the global config file path.
func GlobalConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the session directory tree with proper permissions.
func EnsureDir(name string) error {
	for _, d := range []string{Dir(name), LogDir(name)} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}

// LockPath returns the single-instance lock of a binary within a session.
func LockPath(name, binary string) string {
	return filepath.Join(Dir(name), binary+".lock")
}
