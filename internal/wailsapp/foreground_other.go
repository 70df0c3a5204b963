//go:build !windows

package wailsapp

// AllowForegroundHandoff is a no-op outside Windows.
func AllowForegroundHandoff() {}
