package deeplink

import (
	"errors"

	"github.com/algorandfoundation/algokit-lora/internal/logging"
)

// Emitter sends a named event with a string payload to the web UI.
type Emitter interface {
	Emit(event, payload string) error
}

// Window is the one application window. Implementations return ErrNoWindow
// when the window does not exist yet.
type Window interface {
	// Eval runs script in the webview's global scope.
	Eval(script string) error

	// Focus restores and raises the window.
	Focus() error
}

// Dispatcher validates incoming URLs and hands matching ones to the UI.
// It holds no state between deliveries.
type Dispatcher struct {
	scheme  Scheme
	channel Channel
	emitter Emitter
	window  Window
	logger  *logging.Logger
}

// NewDispatcher wires a dispatcher to the UI handles it delivers through.
func NewDispatcher(scheme Scheme, channel Channel, emitter Emitter, window Window, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Dispatcher{
		scheme:  scheme,
		channel: channel,
		emitter: emitter,
		window:  window,
		logger:  logger,
	}
}

// Scheme returns the scheme the dispatcher accepts.
func (d *Dispatcher) Scheme() Scheme {
	return d.scheme
}

// Channel returns the event/global pair deliveries use.
func (d *Dispatcher) Channel() Channel {
	return d.channel
}

// Dispatch emits raw on the channel's event if it matches the scheme.
func (d *Dispatcher) Dispatch(raw string) error {
	req, err := d.scheme.Parse(raw)
	if err != nil {
		return d.report(raw, err)
	}
	return d.report(raw, d.emit(req))
}

// DispatchWithGlobal assigns raw to the channel's global variable and then
// emits it. The assignment covers a UI whose listener is not attached yet;
// its failure is logged and does not stop the event.
func (d *Dispatcher) DispatchWithGlobal(raw string) error {
	req, err := d.scheme.Parse(raw)
	if err != nil {
		return d.report(raw, err)
	}
	if err := d.window.Eval(d.channel.AssignScript(req.Raw)); err != nil {
		d.logger.Warn().Err(err).Str("global", d.channel.Global).Msg("Failed to assign deep link global")
	}
	return d.report(raw, d.emit(req))
}

// DispatchArgs scans an argument list as received by a later launch
// (program name first) and dispatches every argument that matches the
// scheme. Returns how many were delivered.
func (d *Dispatcher) DispatchArgs(args []string) int {
	if len(args) < 2 {
		return 0
	}
	delivered := 0
	for _, arg := range args[1:] {
		if !d.scheme.Matches(arg) {
			continue
		}
		if err := d.Dispatch(arg); err == nil {
			delivered++
		}
	}
	return delivered
}

// Focus raises the window, e.g. when a later launch was redirected here.
func (d *Dispatcher) Focus() error {
	if err := d.window.Focus(); err != nil {
		d.logger.Warn().Err(err).Msg("Failed to focus window")
		return err
	}
	return nil
}

func (d *Dispatcher) emit(req Request) error {
	return d.emitter.Emit(d.channel.Event, req.Raw)
}

// report logs err at a level matching its class and returns it unchanged.
func (d *Dispatcher) report(raw string, err error) error {
	switch {
	case err == nil:
		d.logger.Info().Str("event", d.channel.Event).Str("url", raw).Msg("Deep link delivered")
	case errors.Is(err, ErrForeignScheme):
		d.logger.Debug().Str("arg", raw).Msg("Ignoring argument outside the registered scheme")
	case errors.Is(err, ErrNoWindow):
		d.logger.Warn().Str("url", raw).Msg("No window to receive deep link, dropping it")
	default:
		d.logger.Error().Err(err).Str("url", raw).Msg("Failed to deliver deep link")
	}
	return err
}
