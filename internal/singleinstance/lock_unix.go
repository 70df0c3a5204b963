//go:build !windows

package singleinstance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"
)

// claim is an exclusive flock on the lock file. The kernel drops it when
// the process exits, so a crashed primary never leaves a stale claim.
type claim struct {
	f *os.File
}

func tryClaim(opts *Options) (*claim, bool, error) {
	if err := os.MkdirAll(filepath.Dir(opts.LockPath), 0700); err != nil {
		return nil, false, fmt.Errorf("failed to create lock directory: %w", err)
	}
	f, err := os.OpenFile(opts.LockPath, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to lock %s: %w", opts.LockPath, err)
	}

	// Record the holder for diagnostics; the lock itself is what counts.
	if err := f.Truncate(0); err == nil {
		f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	}
	return &claim{f: f}, true, nil
}

func (c *claim) release() error {
	if c == nil || c.f == nil {
		return nil
	}
	unix.Flock(int(c.f.Fd()), unix.LOCK_UN)
	err := c.f.Close()
	c.f = nil
	return err
}
