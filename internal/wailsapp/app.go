// Package wailsapp hosts the AlgoKit lora web UI in a Wails window and
// routes deep links into it.
package wailsapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"

	"github.com/algorandfoundation/algokit-lora/internal/config"
	"github.com/algorandfoundation/algokit-lora/internal/deeplink"
	"github.com/algorandfoundation/algokit-lora/internal/events"
	"github.com/algorandfoundation/algokit-lora/internal/logging"
	"github.com/algorandfoundation/algokit-lora/internal/notify"
	"github.com/algorandfoundation/algokit-lora/internal/scheme"
	"github.com/algorandfoundation/algokit-lora/internal/singleinstance"
	"github.com/algorandfoundation/algokit-lora/internal/version"
)

// Options configures Run.
type Options struct {
	Config *config.Config

	// Args is the launch argument vector, program name first.
	Args       []string
	WorkingDir string

	// Assets is the built web UI.
	Assets fs.FS

	Logger *logging.Logger

	// Registrar defaults to scheme.New for the running platform.
	Registrar scheme.Registrar

	// Notifier reports failures that happen without a window. Defaults to
	// a desktop notifier.
	Notifier FailureNotifier

	// Platform selects the delivery strategy. Defaults to runtime.GOOS.
	Platform string
}

// FailureNotifier tells the user about failures that leave no window open.
type FailureNotifier interface {
	RelayFailed(url string, err error)
	StartupFailed(err error)
}

// newSchemeRegistrar builds the platform registrar when Options.Registrar
// is unset. Tests replace it.
var newSchemeRegistrar = scheme.New

func (o *Options) setDefaults() error {
	if o.Config == nil {
		return fmt.Errorf("wailsapp: config is required")
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	if o.Notifier == nil {
		o.Notifier = notify.NewNotifier(&notify.Config{Enabled: o.Config.Notify, Title: o.Config.ProductName}, o.Logger)
	}
	if o.Platform == "" {
		o.Platform = runtime.GOOS
	}
	if o.WorkingDir == "" {
		o.WorkingDir, _ = os.Getwd()
	}
	return nil
}

// App is the main Wails application struct.
// All public methods are exposed to the frontend as callable functions.
type App struct {
	cfg        *config.Config
	logger     *logging.Logger
	bus        *events.EventBus
	instance   *singleinstance.Instance
	dispatcher *deeplink.Dispatcher
	strategy   deeplink.Strategy
	runtime    *Runtime
	bridge     *EventBridge
	logFile    io.Closer

	args       []string
	launchOnce sync.Once
	closeOnce  sync.Once

	// URLs from the open-URL callback that arrive before the page loads,
	// which is where the launching link lands on macOS.
	pendingMu sync.Mutex
	pending   []string
	launched  bool
}

// newApp claims the single instance, registers the scheme and starts the
// event bridge. A later launch gets singleinstance.ErrAlreadyRunning once
// its arguments were handed over.
func newApp(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config

	s, err := deeplink.NewScheme(cfg.Scheme)
	if err != nil {
		return nil, err
	}

	if err := cfg.EnsureRuntimeDirectory(); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	AllowForegroundHandoff()

	bus := events.NewEventBus(events.DefaultBuffer)
	inst, err := singleinstance.Acquire(ctx, singleinstance.Options{
		AppID:        cfg.AppID,
		LockPath:     cfg.LockPath(),
		Endpoint:     cfg.RelayEndpoint(),
		Args:         opts.Args,
		WorkingDir:   opts.WorkingDir,
		RelayTimeout: cfg.RelayTimeout,
		DedupeTTL:    cfg.DedupeTTL,
		Bus:          bus,
		Logger:       opts.Logger.Named("singleinstance"),
	})
	if err != nil {
		bus.Close()
		if errors.Is(err, singleinstance.ErrRelayFailed) {
			opts.Notifier.RelayFailed(firstMatching(s, opts.Args), err)
		}
		return nil, err
	}

	app := &App{
		cfg:      cfg,
		logger:   opts.Logger,
		bus:      bus,
		instance: inst,
		strategy: deeplink.StrategyFor(opts.Platform),
		runtime:  NewRuntime(),
		args:     append([]string(nil), opts.Args...),
	}

	if closer, err := opts.Logger.TeeToFile(cfg.LogDirectory()); err != nil {
		opts.Logger.Warn().Err(err).Msg("File logging disabled")
	} else {
		app.logFile = closer
	}

	if err := registerScheme(ctx, opts, s.Name()); err != nil {
		app.close()
		opts.Notifier.StartupFailed(err)
		return nil, fmt.Errorf("failed to register url scheme: %w", err)
	}

	app.dispatcher = deeplink.NewDispatcher(
		s,
		deeplink.ChannelFor(cfg.LegacyChannel),
		app.runtime,
		app.runtime,
		opts.Logger.Named("deeplink"),
	)
	app.bridge = NewEventBridge(bus, app.dispatcher, app.strategy, opts.Logger.Named("bridge"))
	if err := app.bridge.Start(); err != nil {
		app.close()
		return nil, fmt.Errorf("failed to start event bridge: %w", err)
	}

	return app, nil
}

func registerScheme(ctx context.Context, opts Options, name string) error {
	registrar := opts.Registrar
	if registrar == nil {
		var err error
		registrar, err = newSchemeRegistrar(scheme.Options{
			AppID:       opts.Config.AppID,
			Scheme:      name,
			ProductName: opts.Config.ProductName,
			Logger:      opts.Logger.Named("scheme"),
		})
		if err != nil {
			return err
		}
	}
	return registrar.Register(ctx)
}

// startup is called when the app starts. The context is saved
// so we can call the Wails runtime methods.
func (a *App) startup(ctx context.Context) {
	a.runtime.attach(ctx)
	a.logger.Info().
		Str("strategy", a.strategy.Name()).
		Str("event", a.dispatcher.Channel().Event).
		Msg("Wails application started")
}

// domReady is called after the frontend DOM is ready. The launch arguments
// and any URL held by onURLOpen are delivered on the first call only; a
// reload must not replay them.
func (a *App) domReady(ctx context.Context) {
	a.logger.Debug().Msg("Frontend DOM ready")
	a.launchOnce.Do(func() {
		a.pendingMu.Lock()
		defer a.pendingMu.Unlock()

		a.runtime.markLoaded()
		a.launched = true
		a.bus.PublishLaunch(a.args)
		for _, url := range a.pending {
			a.bus.PublishURLOpened(url)
		}
		a.pending = nil
	})
}

// onURLOpen receives URLs from the macOS open-URL Apple Event. The event
// for the launching link fires before the page has loaded; it is held until
// domReady so the page keeps the global and hears the event.
func (a *App) onURLOpen(url string) {
	a.pendingMu.Lock()
	defer a.pendingMu.Unlock()

	if !a.launched && !a.runtime.Ready() {
		a.logger.Debug().Str("url", url).Msg("Holding URL until the page has loaded")
		a.pending = append(a.pending, url)
		return
	}
	a.bus.PublishURLOpened(url)
}

// shutdown is called at application termination.
func (a *App) shutdown(ctx context.Context) {
	a.logger.Info().Msg("Wails application shutting down")
	a.runtime.detach()
}

// close releases everything newApp acquired. Safe to call more than once.
func (a *App) close() {
	a.closeOnce.Do(func() {
		if a.bridge != nil {
			a.bridge.Stop()
		}
		a.bus.Close()
		if err := a.instance.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to release single-instance claim")
		}
		if a.logFile != nil {
			a.logFile.Close()
		}
	})
}

func (a *App) options(assets fs.FS) *options.App {
	macOpts := &mac.Options{
		About: &mac.AboutInfo{
			Title:   a.cfg.ProductName,
			Message: fmt.Sprintf("Version %s", version.Version),
		},
	}
	if a.strategy.UsesCallback() {
		macOpts.OnUrlOpen = a.onURLOpen
	}

	return &options.App{
		Title:     a.cfg.WindowTitle,
		Width:     config.WindowWidth,
		Height:    config.WindowHeight,
		MinWidth:  config.WindowMinWidth,
		MinHeight: config.WindowMinHeight,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 255, G: 255, B: 255, A: 1},
		OnStartup:        a.startup,
		OnDomReady:       a.domReady,
		OnShutdown:       a.shutdown,
		Bind: []interface{}{
			a,
		},
		Mac: macOpts,
		Windows: &windows.Options{
			WebviewBrowserPath: getWebView2BrowserPath(),
		},
		Linux: &linux.Options{
			ProgramName: a.cfg.AppID,
		},
	}
}

// Run launches the Wails GUI application. It returns nil without opening a
// window when another instance accepted this launch's arguments.
func Run(ctx context.Context, opts Options) error {
	if err := opts.setDefaults(); err != nil {
		return err
	}
	logger := opts.Logger

	if opts.Config.Debug {
		logging.SetGlobalLevel(zerolog.DebugLevel)
		logger.Info().Msg("Debug logging enabled via LORA_DEBUG")
	}

	if opts.Platform == "linux" && os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return ErrNoDisplay
	}

	app, err := newApp(ctx, opts)
	if errors.Is(err, singleinstance.ErrAlreadyRunning) {
		logger.Info().Msg("Handed launch to the running instance")
		return nil
	}
	if err != nil {
		return err
	}
	defer app.close()

	if err := wails.Run(app.options(opts.Assets)); err != nil {
		return fmt.Errorf("wails application error: %w", err)
	}
	return nil
}

func firstMatching(s deeplink.Scheme, args []string) string {
	if len(args) < 2 {
		return ""
	}
	for _, arg := range args[1:] {
		if s.Matches(arg) {
			return arg
		}
	}
	return ""
}
