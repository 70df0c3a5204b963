// Package scheme registers the application as the handler for its custom
// URL scheme with the operating system, so that opening such a URL launches
// (or, through the single-instance relay, activates) the application.
package scheme

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/algorandfoundation/algokit-lora/internal/logging"
	"github.com/algorandfoundation/algokit-lora/internal/pathutil"
)

// Registration methods reported by Status.
const (
	MethodDesktopEntry = "desktop-entry"
	MethodRegistry     = "registry"
	MethodBundle       = "bundle"
)

// ErrNotRegistered is returned by Unregister when there is nothing to remove.
var ErrNotRegistered = errors.New("scheme is not registered")

// Registrar installs and removes the OS-level scheme handler.
type Registrar interface {
	// Register points the scheme at Options.Executable. It is idempotent.
	Register(ctx context.Context) error

	// Unregister removes what Register installed.
	Unregister(ctx context.Context) error

	// Status reports the current registration.
	Status(ctx context.Context) (*Status, error)
}

// Status describes a registration as found on the system.
type Status struct {
	Registered bool   `json:"registered"`
	Method     string `json:"method"`
	Location   string `json:"location"`
	Command    string `json:"command,omitempty"`

	// Current is false when a registration exists but points at a
	// different executable.
	Current bool `json:"current"`
}

// CommandRunner runs an external helper such as xdg-mime.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, out)
	}
	return nil
}

// Options configures a Registrar.
type Options struct {
	AppID       string
	Scheme      string
	ProductName string

	// Executable is the binary the OS should launch. Defaults to
	// pathutil.ResolveExecutable().
	Executable string

	// DataHome overrides $XDG_DATA_HOME for the desktop entry (Linux).
	DataHome string

	Runner CommandRunner
	Logger *logging.Logger
}

func (o *Options) setDefaults() error {
	if o.AppID == "" || o.Scheme == "" {
		return fmt.Errorf("scheme: app id and scheme are required")
	}
	if o.ProductName == "" {
		o.ProductName = o.AppID
	}
	if o.Executable == "" {
		exe, err := pathutil.ResolveExecutable()
		if err != nil {
			return fmt.Errorf("failed to resolve executable path: %w", err)
		}
		o.Executable = exe
	}
	if o.Runner == nil {
		o.Runner = ExecRunner
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	return nil
}

// New returns the Registrar for the running platform.
func New(opts Options) (Registrar, error) {
	return NewFor(runtime.GOOS, opts)
}

// NewFor returns the Registrar for goos.
func NewFor(goos string, opts Options) (Registrar, error) {
	if err := opts.setDefaults(); err != nil {
		return nil, err
	}
	switch goos {
	case "darwin":
		return &bundleRegistrar{opts: opts}, nil
	case "windows":
		return newRegistryRegistrar(opts)
	default:
		return newDesktopRegistrar(opts)
	}
}
