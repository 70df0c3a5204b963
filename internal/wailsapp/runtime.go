package wailsapp

import (
	"context"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/algorandfoundation/algokit-lora/internal/deeplink"
)

// runtimeFuncs are the Wails runtime calls the adapters make. Tests swap
// them out; the real ones abort the process when handed a context that did
// not come from Wails.
type runtimeFuncs struct {
	emit       func(ctx context.Context, name string, data ...interface{})
	execJS     func(ctx context.Context, js string)
	unminimise func(ctx context.Context)
	show       func(ctx context.Context)
}

func wailsRuntime() runtimeFuncs {
	return runtimeFuncs{
		emit:       runtime.EventsEmit,
		execJS:     runtime.WindowExecJS,
		unminimise: runtime.WindowUnminimise,
		show:       runtime.WindowShow,
	}
}

// Runtime adapts the Wails runtime to deeplink.Emitter and deeplink.Window.
// Until attach is called with the OnStartup context, and again after
// detach, every call returns deeplink.ErrNoWindow.
type Runtime struct {
	mu     sync.RWMutex
	ctx    context.Context
	loaded bool
	fns    runtimeFuncs
}

// NewRuntime returns an adapter bound to the Wails runtime.
func NewRuntime() *Runtime {
	return &Runtime{fns: wailsRuntime()}
}

func (r *Runtime) attach(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctx = ctx
	r.loaded = false
}

func (r *Runtime) detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctx = nil
	r.loaded = false
}

// markLoaded records that the page has loaded; called from OnDomReady.
func (r *Runtime) markLoaded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded = true
}

// Ready reports whether the window exists and its page has loaded, so a
// global assignment survives and the page can hear events.
func (r *Runtime) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ctx != nil && r.loaded
}

func (r *Runtime) context() (context.Context, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.ctx == nil {
		return nil, deeplink.ErrNoWindow
	}
	return r.ctx, nil
}

// Emit implements deeplink.Emitter.
func (r *Runtime) Emit(event, payload string) error {
	ctx, err := r.context()
	if err != nil {
		return err
	}
	r.fns.emit(ctx, event, payload)
	return nil
}

// Eval implements deeplink.Window.
func (r *Runtime) Eval(script string) error {
	ctx, err := r.context()
	if err != nil {
		return err
	}
	r.fns.execJS(ctx, script)
	return nil
}

// Focus implements deeplink.Window.
func (r *Runtime) Focus() error {
	ctx, err := r.context()
	if err != nil {
		return err
	}
	r.fns.unminimise(ctx)
	r.fns.show(ctx)
	return nil
}
