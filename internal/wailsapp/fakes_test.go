package wailsapp

import (
	"context"
	"sync"

	"github.com/algorandfoundation/algokit-lora/internal/scheme"
)

// recordingRuntime stands in for the Wails runtime.
type recordingRuntime struct {
	mu      sync.Mutex
	emitted []emitted
	scripts []string
	focused int
}

type emitted struct {
	name    string
	payload string
}

func (r *recordingRuntime) funcs() runtimeFuncs {
	return runtimeFuncs{
		emit: func(_ context.Context, name string, data ...interface{}) {
			r.mu.Lock()
			defer r.mu.Unlock()
			payload, _ := data[0].(string)
			r.emitted = append(r.emitted, emitted{name, payload})
		},
		execJS: func(_ context.Context, js string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.scripts = append(r.scripts, js)
		},
		unminimise: func(context.Context) {},
		show: func(context.Context) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.focused++
		},
	}
}

func (r *recordingRuntime) Emitted() []emitted {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]emitted(nil), r.emitted...)
}

func (r *recordingRuntime) Scripts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.scripts...)
}

func (r *recordingRuntime) Focused() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.focused
}

func newTestRuntime() (*Runtime, *recordingRuntime) {
	rec := &recordingRuntime{}
	return &Runtime{fns: rec.funcs()}, rec
}

// fakeRegistrar records registration calls.
type fakeRegistrar struct {
	mu         sync.Mutex
	registered int
	err        error
}

func (f *fakeRegistrar) Register(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered++
	return f.err
}

func (f *fakeRegistrar) Unregister(context.Context) error { return nil }

func (f *fakeRegistrar) Status(context.Context) (*scheme.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &scheme.Status{Registered: f.registered > 0, Method: "fake"}, nil
}

func (f *fakeRegistrar) Registered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registered
}

// fakeNotifier records failure notifications.
type fakeNotifier struct {
	mu            sync.Mutex
	relayFailed   []string
	startupFailed []error
}

func (f *fakeNotifier) RelayFailed(url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.relayFailed = append(f.relayFailed, url)
}

func (f *fakeNotifier) StartupFailed(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startupFailed = append(f.startupFailed, err)
}

func (f *fakeNotifier) StartupFailures() []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]error(nil), f.startupFailed...)
}
