// Package wailsapp provides common error definitions.
package wailsapp

import "errors"

var (
	// ErrNoDisplay is returned on Linux when neither X11 nor Wayland is
	// available.
	ErrNoDisplay = errors.New("no display detected (DISPLAY and WAYLAND_DISPLAY are not set)")

	// ErrBridgeStopped is returned when the event bridge is used after Stop.
	ErrBridgeStopped = errors.New("event bridge stopped")
)
