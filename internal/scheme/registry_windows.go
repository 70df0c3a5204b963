//go:build windows

package scheme

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// registryRegistrar writes the per-user URL protocol handler under
// HKCU\Software\Classes\<scheme>, which needs no elevation.
type registryRegistrar struct {
	opts Options
	root string
}

func newRegistryRegistrar(opts Options) (Registrar, error) {
	return &registryRegistrar{opts: opts, root: `Software\Classes\` + opts.Scheme}, nil
}

func (r *registryRegistrar) commandKey() string {
	return r.root + `\shell\open\command`
}

func (r *registryRegistrar) Register(context.Context) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, r.root, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", r.root, err)
	}
	defer key.Close()

	if err := key.SetStringValue("", "URL:"+r.opts.ProductName); err != nil {
		return fmt.Errorf("failed to set scheme description: %w", err)
	}
	if err := key.SetStringValue("URL Protocol", ""); err != nil {
		return fmt.Errorf("failed to mark URL protocol: %w", err)
	}

	icon, _, err := registry.CreateKey(registry.CURRENT_USER, r.root+`\DefaultIcon`, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to create icon key: %w", err)
	}
	defer icon.Close()
	if err := icon.SetStringValue("", fmt.Sprintf(`"%s",0`, r.opts.Executable)); err != nil {
		return fmt.Errorf("failed to set icon: %w", err)
	}

	cmd, _, err := registry.CreateKey(registry.CURRENT_USER, r.commandKey(), registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to create command key: %w", err)
	}
	defer cmd.Close()
	if err := cmd.SetStringValue("", CommandLine(r.opts.Executable)); err != nil {
		return fmt.Errorf("failed to set open command: %w", err)
	}

	r.opts.Logger.Info().Str("key", `HKCU\`+r.root).Str("scheme", r.opts.Scheme).Msg("Registered scheme handler")
	return nil
}

func (r *registryRegistrar) Unregister(context.Context) error {
	// DeleteKey only removes leaf keys.
	keys := []string{
		r.commandKey(),
		r.root + `\shell\open`,
		r.root + `\shell`,
		r.root + `\DefaultIcon`,
		r.root,
	}
	removed := false
	for _, k := range keys {
		err := registry.DeleteKey(registry.CURRENT_USER, k)
		if err == nil {
			removed = true
			continue
		}
		if !errors.Is(err, registry.ErrNotExist) {
			return fmt.Errorf("failed to delete %s: %w", k, err)
		}
	}
	if !removed {
		return ErrNotRegistered
	}
	return nil
}

func (r *registryRegistrar) Status(context.Context) (*Status, error) {
	st := &Status{Method: MethodRegistry, Location: `HKCU\` + r.root}

	key, err := registry.OpenKey(registry.CURRENT_USER, r.commandKey(), registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return st, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", r.commandKey(), err)
	}
	defer key.Close()

	command, _, err := key.GetStringValue("")
	if err != nil && !errors.Is(err, registry.ErrNotExist) {
		return nil, fmt.Errorf("failed to read open command: %w", err)
	}
	st.Command = command
	st.Registered = command != ""
	st.Current = command == CommandLine(r.opts.Executable)
	return st, nil
}
