// Package profile locates the on-disk state of a named agent profile.
package profile

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.salesagent, or $SALES_AGENT_HOME when set.
func BaseDir() string {
	if dir := os.Getenv("SALES_AGENT_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".salesagent")
}

// Dir returns the profile-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "profiles", name)
}

// SocketPath returns the UDS socket path for a profile.
func SocketPath(name string) string {
	return filepath.Join(Dir(name), "daemon.sock")
}

// LockPath returns the lock file path for a profile.
func LockPath(name string) string {
	return filepath.Join(Dir(name), "LOCK")
}

// AgentDBPath returns the local store path.
func AgentDBPath(name string) string {
	return filepath.Join(Dir(name), "agent.db")
}

// CommunityDBPath returns the file used as community store when no DSN is configured.
func CommunityDBPath(name string) string {
	return filepath.Join(Dir(name), "community.db")
}

// BrowserDir returns the persistent browser user-data dir.
func BrowserDir(name string) string {
	return filepath.Join(Dir(name), "browser")
}

// DiagnosticsDir returns where failure screenshots are written.
func DiagnosticsDir(name string) string {
	return filepath.Join(Dir(name), "diagnostics")
}

// LogDir returns the log directory for a profile.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the daemon log file path.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "salesd.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnvPath returns the optional .env file holding secrets.
func EnvPath() string {
	return filepath.Join(BaseDir(), ".env")
}

// EnsureDir creates the profile directory tree with proper permissions.
func EnsureDir(name string) error {
	dirs := []string{
		Dir(name),
		LogDir(name),
		BrowserDir(name),
		DiagnosticsDir(name),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
