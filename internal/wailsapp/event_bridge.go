package wailsapp

import (
	"sync"

	"github.com/algorandfoundation/algokit-lora/internal/deeplink"
	"github.com/algorandfoundation/algokit-lora/internal/events"
	"github.com/algorandfoundation/algokit-lora/internal/logging"
)

// EventBridge drains the EventBus into the deep-link dispatcher. It is the
// only goroutine that calls the dispatcher, so relay connections and the
// macOS URL callback never deliver concurrently.
type EventBridge struct {
	eventBus     *events.EventBus
	subscription <-chan events.Event
	dispatcher   *deeplink.Dispatcher
	strategy     deeplink.Strategy
	logger       *logging.Logger

	// delivered is called after each event is handled. Used by tests.
	delivered func(events.Event)

	stopC   chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	stopped bool
}

// NewEventBridge creates a new event bridge.
func NewEventBridge(eventBus *events.EventBus, dispatcher *deeplink.Dispatcher, strategy deeplink.Strategy, logger *logging.Logger) *EventBridge {
	if logger == nil {
		logger = logging.Nop()
	}
	return &EventBridge{
		eventBus:   eventBus,
		dispatcher: dispatcher,
		strategy:   strategy,
		logger:     logger,
		stopC:      make(chan struct{}),
	}
}

// Start begins forwarding events. A second Start is ignored.
func (eb *EventBridge) Start() error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.stopped {
		return ErrBridgeStopped
	}
	if eb.started {
		eb.logger.Warn().Msg("Event bridge already started, ignoring duplicate Start()")
		return nil
	}

	eb.subscription = eb.eventBus.SubscribeAll()
	eb.started = true
	eb.wg.Add(1)
	go eb.forwardLoop()

	eb.logger.Debug().Str("strategy", eb.strategy.Name()).Msg("Event bridge started")
	return nil
}

// Stop stops forwarding events and waits for the loop to exit.
func (eb *EventBridge) Stop() {
	eb.mu.Lock()
	if !eb.started || eb.stopped {
		eb.stopped = true
		eb.mu.Unlock()
		return
	}
	eb.stopped = true
	sub := eb.subscription
	eb.mu.Unlock()

	close(eb.stopC)
	eb.wg.Wait()
	eb.eventBus.UnsubscribeAll(sub)

	if dropped := eb.eventBus.GetDroppedEventCount(); dropped > 0 {
		eb.logger.Warn().Int64("dropped", dropped).Msg("Deep-link events were dropped because a subscriber buffer was full")
	}
	eb.logger.Debug().Msg("Event bridge stopped")
}

func (eb *EventBridge) forwardLoop() {
	defer eb.wg.Done()

	for {
		select {
		case event, ok := <-eb.subscription:
			if !ok {
				return
			}
			eb.forwardEvent(event)
			if eb.delivered != nil {
				eb.delivered(event)
			}

		case <-eb.stopC:
			return
		}
	}
}

// forwardEvent routes one event. Delivery errors are already logged by the
// dispatcher and are not retried.
func (eb *EventBridge) forwardEvent(event events.Event) {
	switch e := event.(type) {
	case *events.LaunchEvent:
		_ = eb.strategy.Startup(eb.dispatcher, e.Args)

	case *events.URLOpenedEvent:
		_ = eb.strategy.OnURL(eb.dispatcher, e.URL)

	case *events.SecondInstanceEvent:
		// Focus first so the user sees the window the link landed in.
		_ = eb.dispatcher.Focus()
		n := eb.dispatcher.DispatchArgs(e.Args)
		eb.logger.Debug().
			Str("relay_id", e.RelayID).
			Int("delivered", n).
			Msg("Handled second instance launch")
	}
}
