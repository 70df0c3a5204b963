//go:build windows

package singleinstance

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

// claim is a named mutex in the session namespace. Windows closes the
// handle when the process exits, so a crashed primary never leaves a stale
// claim.
type claim struct {
	h windows.Handle
}

func tryClaim(opts *Options) (*claim, bool, error) {
	name, err := windows.UTF16PtrFromString(`Local\` + opts.AppID)
	if err != nil {
		return nil, false, fmt.Errorf("invalid mutex name: %w", err)
	}

	h, err := windows.CreateMutex(nil, false, name)
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		if h != 0 {
			windows.CloseHandle(h)
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create mutex: %w", err)
	}
	return &claim{h: h}, true, nil
}

func (c *claim) release() error {
	if c == nil || c.h == 0 {
		return nil
	}
	err := windows.CloseHandle(c.h)
	c.h = 0
	return err
}
