package deeplink

import (
	"encoding/json"
	"strings"
	"sync"
)

type emitted struct {
	Event   string
	Payload string
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []emitted
	err    error
}

func (f *fakeEmitter) Emit(event, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, emitted{Event: event, Payload: payload})
	return nil
}

func (f *fakeEmitter) Events() []emitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]emitted(nil), f.events...)
}

// fakeWindow evaluates only the "window.<name>=<json>;" assignments the
// dispatcher produces and records the resulting globals.
type fakeWindow struct {
	mu      sync.Mutex
	missing bool
	scripts []string
	globals map[string]string
	focused int
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{globals: make(map[string]string)}
}

func (f *fakeWindow) Eval(script string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing {
		return ErrNoWindow
	}
	f.scripts = append(f.scripts, script)

	body := strings.TrimSuffix(strings.TrimPrefix(script, "window."), ";")
	name, lit, ok := strings.Cut(body, "=")
	if !ok {
		return nil
	}
	var v string
	if err := json.Unmarshal([]byte(lit), &v); err == nil {
		f.globals[name] = v
	}
	return nil
}

func (f *fakeWindow) Focus() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing {
		return ErrNoWindow
	}
	f.focused++
	return nil
}

func (f *fakeWindow) Global(name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.globals[name]
	return v, ok
}
