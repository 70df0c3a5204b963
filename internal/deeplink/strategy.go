package deeplink

// Strategy captures how the operating system hands URLs to the process.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string

	// UsesCallback reports whether the host must install a URL-open
	// callback for this platform.
	UsesCallback() bool

	// Startup handles the process's own argument vector once the window
	// exists.
	Startup(d *Dispatcher, argv []string) error

	// OnURL handles one URL delivered by the host's URL-open callback. It
	// may fire zero or more times over the life of the process.
	OnURL(d *Dispatcher, raw string) error
}

// CallbackStrategy is used where the platform delivers every URL,
// including the one that launched the app, through a callback (macOS).
type CallbackStrategy struct{}

// Name implements Strategy.
func (CallbackStrategy) Name() string { return "callback" }

// UsesCallback implements Strategy.
func (CallbackStrategy) UsesCallback() bool { return true }

// Startup ignores argv: the launching URL arrives through OnURL.
func (CallbackStrategy) Startup(*Dispatcher, []string) error { return nil }

// OnURL sets the global as well as emitting, since there is no argv copy
// for the UI to fall back on.
func (CallbackStrategy) OnURL(d *Dispatcher, raw string) error {
	return d.DispatchWithGlobal(raw)
}

// ArgvStrategy is used where the launching URL is argv[1] (Linux,
// Windows). Later URLs arrive through the single-instance relay.
type ArgvStrategy struct{}

// Name implements Strategy.
func (ArgvStrategy) Name() string { return "argv" }

// UsesCallback implements Strategy.
func (ArgvStrategy) UsesCallback() bool { return false }

// Startup delivers argv[1], when present, through both the global and the
// event. No extra arguments means no delivery.
func (ArgvStrategy) Startup(d *Dispatcher, argv []string) error {
	if len(argv) < 2 {
		return nil
	}
	return d.DispatchWithGlobal(argv[1])
}

// OnURL emits raw.
func (ArgvStrategy) OnURL(d *Dispatcher, raw string) error {
	return d.Dispatch(raw)
}

// StrategyFor selects the strategy for a GOOS value.
func StrategyFor(goos string) Strategy {
	if goos == "darwin" {
		return CallbackStrategy{}
	}
	return ArgvStrategy{}
}
