// Package config provides configuration for the algokit-lora desktop shell.
//
// Identity values are fixed at build time and may be overridden with
// -ldflags "-X github.com/algorandfoundation/algokit-lora/internal/config.Scheme=...".
// Runtime tuning comes from LORA_* environment variables. There is no
// configuration file.
package config

import (
	"fmt"
	"time"

	"go-simpler.org/env"
)

// Build-time identity. AppID must match the bundle identifier in Info.plist
// on macOS and is used as the single-instance claim name everywhere.
var (
	AppID       = "com.algorandfoundation.lora"
	Scheme      = "algokit-lora"
	ProductName = "AlgoKit lora"
	WindowTitle = "AlgoKit lora"
)

// Window geometry
const (
	WindowWidth     = 1400
	WindowHeight    = 900
	WindowMinWidth  = 800
	WindowMinHeight = 600
)

// Config holds the resolved runtime configuration.
type Config struct {
	AppID       string
	Scheme      string
	ProductName string
	WindowTitle string

	// Debug enables debug-level logging.
	Debug bool `env:"LORA_DEBUG" default:"false"`

	// LogFormat is "console", "json" or "auto" (console on a terminal).
	LogFormat string `env:"LORA_LOG_FORMAT" default:"auto"`

	// LegacyChannel switches deep-link delivery to the old
	// scheme-request-received / window.urlSchemeRequest pair.
	LegacyChannel bool `env:"LORA_LEGACY_CHANNEL" default:"false"`

	// RuntimeDir overrides where the instance lock and relay socket live.
	RuntimeDir string `env:"LORA_RUNTIME_DIR"`

	// RelayTimeout bounds how long a later launch waits for the running
	// instance to accept its arguments.
	RelayTimeout time.Duration `env:"LORA_RELAY_TIMEOUT" default:"3s"`

	// DedupeTTL is how long the running instance remembers relay IDs.
	DedupeTTL time.Duration `env:"LORA_DEDUPE_TTL" default:"30s"`

	// Notify shows a desktop notification when a later launch cannot hand
	// its URL to the running instance.
	Notify bool `env:"LORA_NOTIFY" default:"true"`
}

// Load builds a Config from the build-time identity and the environment.
func Load() (*Config, error) {
	cfg := &Config{
		AppID:       AppID,
		Scheme:      Scheme,
		ProductName: ProductName,
		WindowTitle: WindowTitle,
	}
	if err := env.Load(cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields that have no safe fallback.
func (c *Config) Validate() error {
	if c.AppID == "" {
		return fmt.Errorf("app identifier is empty")
	}
	if c.Scheme == "" {
		return fmt.Errorf("url scheme is empty")
	}
	switch c.LogFormat {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("invalid LORA_LOG_FORMAT %q (want auto, console or json)", c.LogFormat)
	}
	if c.RelayTimeout <= 0 {
		return fmt.Errorf("LORA_RELAY_TIMEOUT must be positive, got %s", c.RelayTimeout)
	}
	if c.DedupeTTL < 0 {
		return fmt.Errorf("LORA_DEDUPE_TTL must not be negative, got %s", c.DedupeTTL)
	}
	return nil
}
