//go:build windows

package wailsapp

import "golang.org/x/sys/windows"

var allowSetForegroundWindow = windows.NewLazySystemDLL("user32.dll").NewProc("AllowSetForegroundWindow")

// asfwAny is ASFW_ANY, (DWORD)-1.
const asfwAny = 0xFFFFFFFF

// AllowForegroundHandoff lets the running instance raise its window when
// this launch relays to it. Windows only grants foreground rights to the
// process the user just started, so they must be passed on explicitly.
func AllowForegroundHandoff() {
	_, _, _ = allowSetForegroundWindow.Call(uintptr(asfwAny))
}
