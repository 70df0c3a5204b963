package scheme

import (
	"context"
	"path/filepath"
	"strings"
)

// bundleRegistrar covers macOS, where the scheme is declared under
// CFBundleURLTypes in the app bundle's Info.plist and LaunchServices picks
// it up when the bundle is installed. There is nothing to do at runtime.
type bundleRegistrar struct {
	opts Options
}

func (b *bundleRegistrar) Register(context.Context) error {
	b.opts.Logger.Debug().Str("scheme", b.opts.Scheme).Msg("Scheme is declared by the app bundle")
	return nil
}

func (b *bundleRegistrar) Unregister(context.Context) error {
	return nil
}

func (b *bundleRegistrar) Status(context.Context) (*Status, error) {
	bundle := bundlePath(b.opts.Executable)
	return &Status{
		Registered: bundle != "",
		Method:     MethodBundle,
		Location:   bundle,
		Current:    bundle != "",
	}, nil
}

// bundlePath returns the enclosing .app directory, or "" when the binary is
// not running from a bundle (e.g. during development).
func bundlePath(exe string) string {
	dir := filepath.Dir(exe)
	for dir != filepath.Dir(dir) {
		if strings.HasSuffix(dir, ".app") {
			return dir
		}
		dir = filepath.Dir(dir)
	}
	return ""
}
