// Package singleinstance makes sure only one process per application
// identifier owns a window. Later launches hand their arguments to the
// running process over the ipc relay and exit.
package singleinstance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/algorandfoundation/algokit-lora/internal/events"
	"github.com/algorandfoundation/algokit-lora/internal/ipc"
	"github.com/algorandfoundation/algokit-lora/internal/logging"
)

var (
	// ErrAlreadyRunning is returned by Acquire after the arguments were
	// handed to the running instance. The caller should exit quietly.
	ErrAlreadyRunning = errors.New("another instance is already running")

	// ErrRelayFailed is returned when another instance holds the claim but
	// did not accept the arguments in time.
	ErrRelayFailed = errors.New("failed to relay arguments to the running instance")

	// ErrNotRunning is returned by Relay when no instance is listening.
	ErrNotRunning = errors.New("no running instance")
)

// retryInterval spaces relay attempts while a just-started primary brings
// its server up.
const retryInterval = 100 * time.Millisecond

// Options configures Acquire.
type Options struct {
	// AppID names the claim. On Windows it is the mutex name.
	AppID string

	// LockPath is the lock file used on Unix.
	LockPath string

	// Endpoint is the relay socket path or pipe name.
	Endpoint string

	// Args and WorkingDir are relayed when another instance is running.
	Args       []string
	WorkingDir string

	// RelayTimeout bounds how long a later launch keeps trying to reach
	// the running instance.
	RelayTimeout time.Duration

	// DedupeTTL is how long relay IDs are remembered. Zero disables it.
	DedupeTTL time.Duration

	// Bus receives a SecondInstanceEvent per accepted relay.
	Bus *events.EventBus

	Logger *logging.Logger
	Clock  clockwork.Clock

	// NewID generates relay IDs. Defaults to uuid.NewString.
	NewID func() string
}

func (o *Options) setDefaults() {
	if o.RelayTimeout <= 0 {
		o.RelayTimeout = 3 * time.Second
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
}

// Instance is the claim held by the primary process.
type Instance struct {
	claim  *claim
	server *ipc.Server
	bus    *events.EventBus
	logger *logging.Logger
	clock  clockwork.Clock
	ttl    time.Duration

	mu   sync.Mutex
	seen map[string]time.Time

	closeOnce sync.Once
}

// Acquire claims the application identifier. If this process becomes the
// primary it starts the relay server and returns the Instance. Otherwise it
// relays opts.Args to the primary and returns ErrAlreadyRunning, or
// ErrRelayFailed if the primary could not be reached. Any other error means
// the claim itself could not be attempted.
func Acquire(ctx context.Context, opts Options) (*Instance, error) {
	opts.setDefaults()
	if opts.Bus == nil {
		return nil, fmt.Errorf("singleinstance: event bus is required")
	}

	c, primary, err := tryClaim(&opts)
	if err != nil {
		return nil, fmt.Errorf("failed to claim single instance %q: %w", opts.AppID, err)
	}

	if !primary {
		opts.Logger.Info().Str("app_id", opts.AppID).Msg("Another instance is running, relaying arguments")
		if err := relayWithRetry(ctx, &opts); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyRunning
	}

	inst := &Instance{
		claim:  c,
		bus:    opts.Bus,
		logger: opts.Logger,
		clock:  opts.Clock,
		ttl:    opts.DedupeTTL,
		seen:   make(map[string]time.Time),
	}
	inst.server = ipc.NewServer(inst, opts.Logger, opts.Endpoint)
	if err := inst.server.Start(); err != nil {
		c.release()
		return nil, fmt.Errorf("failed to start relay server: %w", err)
	}

	opts.Logger.Info().Str("app_id", opts.AppID).Msg("Acquired single-instance claim")
	return inst, nil
}

// HandleRelay implements ipc.Handler. Each new relay ID is published once.
func (i *Instance) HandleRelay(req *ipc.Request) (bool, error) {
	if i.remember(req.ID) {
		i.logger.Debug().Str("id", req.ID).Msg("Ignoring duplicate relay")
		return true, nil
	}
	i.bus.PublishSecondInstance(req.ID, req.Args, req.WorkingDir)
	return false, nil
}

// remember records id and reports whether it was already known.
func (i *Instance) remember(id string) bool {
	if id == "" || i.ttl <= 0 {
		return false
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.clock.Now()
	for k, at := range i.seen {
		if now.Sub(at) >= i.ttl {
			delete(i.seen, k)
		}
	}
	if _, ok := i.seen[id]; ok {
		return true
	}
	i.seen[id] = now
	return false
}

// Endpoint returns the relay endpoint this instance serves.
func (i *Instance) Endpoint() string {
	return i.server.Endpoint()
}

// Close stops the relay server and releases the claim. Safe to call twice.
func (i *Instance) Close() error {
	var err error
	i.closeOnce.Do(func() {
		i.server.Stop()
		err = i.claim.release()
	})
	return err
}

// relayWithRetry keeps trying until the primary answers or the timeout
// passes. The same ID is reused across attempts so a retry after a lost
// response is not delivered twice.
func relayWithRetry(ctx context.Context, opts *Options) error {
	ctx, cancel := context.WithTimeout(ctx, opts.RelayTimeout)
	defer cancel()

	id := opts.NewID()
	client := ipc.NewClientWithTimeout(opts.Endpoint, opts.RelayTimeout)

	var lastErr error
	for {
		dup, err := client.RelayArgs(ctx, id, opts.Args, opts.WorkingDir)
		if err == nil {
			opts.Logger.Debug().Str("id", id).Bool("duplicate", dup).Msg("Arguments relayed")
			return nil
		}
		if errors.Is(err, ipc.ErrRemote) {
			return fmt.Errorf("%w: %w", ErrRelayFailed, err)
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrRelayFailed, lastErr)
		case <-time.After(retryInterval):
		}
	}
}

// Relay hands args to a running instance without trying to claim. It
// returns ErrNotRunning when nothing is listening on endpoint.
func Relay(ctx context.Context, endpoint string, args []string, workingDir string, timeout time.Duration) error {
	client := ipc.NewClientWithTimeout(endpoint, timeout)
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrNotRunning, err)
	}
	if _, err := client.RelayArgs(ctx, uuid.NewString(), args, workingDir); err != nil {
		return fmt.Errorf("%w: %w", ErrRelayFailed, err)
	}
	return nil
}
