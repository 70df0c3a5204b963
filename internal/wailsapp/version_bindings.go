package wailsapp

import (
	"github.com/algorandfoundation/algokit-lora/internal/version"
)

// VersionInfoDTO describes the running shell to the web UI.
type VersionInfoDTO struct {
	Version   string `json:"version"`
	BuildTime string `json:"buildTime"`
	Scheme    string `json:"scheme"`
	Event     string `json:"event"`
	Global    string `json:"global"`
}

// GetVersionInfo returns the shell version and the deep-link channel the
// UI should listen on.
func (a *App) GetVersionInfo() VersionInfoDTO {
	ch := a.dispatcher.Channel()
	return VersionInfoDTO{
		Version:   version.Version,
		BuildTime: version.BuildTime,
		Scheme:    a.dispatcher.Scheme().Name(),
		Event:     ch.Event,
		Global:    ch.Global,
	}
}
