// Package notify provides cross-platform desktop notifications for AlgoKit lora.
// It uses github.com/gen2brain/beeep for cross-platform notification support.
//
// A later launch that cannot reach the running instance has no window of its
// own, so a notification is the only place the user sees why the link did
// nothing.
package notify

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/gen2brain/beeep"

	"github.com/algorandfoundation/algokit-lora/internal/logging"
)

// Notifier handles desktop notifications.
type Notifier struct {
	logger  *logging.Logger
	title   string
	enabled bool
	mu      sync.RWMutex

	notify func(title, message, icon string) error
	alert  func(title, message, icon string) error
}

// Config holds notification configuration.
type Config struct {
	// Enabled determines if notifications are sent.
	Enabled bool

	// Title prefixes every notification. Defaults to the product name.
	Title string
}

// DefaultConfig returns the default notification configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled: true,
		Title:   "AlgoKit lora",
	}
}

// NewNotifier creates a new notifier with the given configuration.
func NewNotifier(cfg *Config, logger *logging.Logger) *Notifier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	title := cfg.Title
	if title == "" {
		title = DefaultConfig().Title
	}

	return &Notifier{
		logger:  logger,
		title:   title,
		enabled: cfg.Enabled,
		notify: func(title, message, icon string) error {
			return beeep.Notify(title, message, icon)
		},
		alert: func(title, message, icon string) error {
			return beeep.Alert(title, message, icon)
		},
	}
}

// IsEnabled returns whether notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

// RelayFailed tells the user a link could not be handed to the running
// instance.
func (n *Notifier) RelayFailed(url string, err error) {
	if !n.IsEnabled() {
		return
	}

	message := "AlgoKit lora is running but did not respond."
	if url != "" {
		message = fmt.Sprintf("Could not open %s:\n%s", truncate(url, 60), message)
	}
	if err != nil {
		message += "\n" + truncate(err.Error(), 100)
	}

	n.Alert(message)
}

// StartupFailed reports a fatal startup error, such as a failed scheme
// registration, when no window will be shown.
func (n *Notifier) StartupFailed(err error) {
	if !n.IsEnabled() || err == nil {
		return
	}

	if sendErr := n.notify(n.title, "Failed to start:\n"+truncate(err.Error(), 120), ""); sendErr != nil {
		n.logger.Warn().Err(sendErr).Msg("Failed to send startup failure notification")
	}
}

// Alert sends an alert notification (error level).
// This is for critical issues that require user attention.
func (n *Notifier) Alert(message string) {
	if !n.IsEnabled() {
		return
	}

	if err := n.alert(n.title, message, ""); err != nil {
		// Fall back to regular notify
		if err := n.notify(n.title, message, ""); err != nil {
			n.logger.Error().Err(err).Str("message", message).Msg("Failed to send alert notification")
		}
	}
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}
