package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// maxSocketPath is the sun_path limit on macOS (104) minus a safety margin.
// Linux allows 108.
const maxSocketPath = 100

// RuntimeDirectory returns the directory holding the instance lock and the
// relay socket.
//
// Locations:
//   - LORA_RUNTIME_DIR when set
//   - Windows: %LOCALAPPDATA%\AlgoKit\lora
//   - Unix: ~/.config/algokit-lora
func (c *Config) RuntimeDirectory() string {
	if c.RuntimeDir != "" {
		return c.RuntimeDir
	}
	return appDataDirectory()
}

// EnsureRuntimeDirectory creates the runtime directory if it doesn't exist.
// Uses 0700 so other users cannot reach the relay socket.
func (c *Config) EnsureRuntimeDirectory() error {
	return os.MkdirAll(c.RuntimeDirectory(), 0700)
}

// LockPath returns the path of the single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.RuntimeDirectory(), c.AppID+".lock")
}

// RelayEndpoint returns the relay address: a named pipe path on Windows,
// a Unix socket path elsewhere.
func (c *Config) RelayEndpoint() string {
	if runtime.GOOS == "windows" {
		return `\\.\pipe\` + c.AppID + "-" + userTag()
	}
	p := filepath.Join(c.RuntimeDirectory(), c.AppID+".sock")
	if len(p) > maxSocketPath {
		p = filepath.Join(os.TempDir(), c.AppID+"-"+userTag()+".sock")
	}
	return p
}

// LogDirectory returns the directory for GUI log files.
func (c *Config) LogDirectory() string {
	return filepath.Join(c.RuntimeDirectory(), "logs")
}

func appDataDirectory() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), "algokit-lora")
			}
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, "AlgoKit", "lora")
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "algokit-lora")
		}
		return filepath.Join(homeDir, ".config", "algokit-lora")
	}
	return filepath.Join(configDir, "algokit-lora")
}

// userTag keeps endpoint names distinct per user where the namespace is
// shared: /tmp on Unix, the pipe namespace on Windows.
func userTag() string {
	for _, k := range []string{"USER", "USERNAME"} {
		if u := os.Getenv(k); u != "" {
			return u
		}
	}
	return "default"
}
