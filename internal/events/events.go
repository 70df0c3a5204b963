// Package events carries URL deliveries from the goroutines that receive
// them (relay connections, the host's URL-open callback) to the single
// goroutine that drives the deep-link dispatcher.
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// Buffer sizes for subscriber channels
const (
	DefaultBuffer = 64
	MaxBuffer     = 1024
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	// EventURLOpened is a single URL handed over by the host's URL-open
	// callback.
	EventURLOpened EventType = "url_opened"

	// EventSecondInstance is the argument list of a later launch relayed
	// to this process.
	EventSecondInstance EventType = "second_instance"

	// EventLaunch is this process's own argument vector, published once the
	// window can receive it.
	EventLaunch EventType = "launch"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// URLOpenedEvent carries one URL from the URL-open callback.
type URLOpenedEvent struct {
	BaseEvent
	URL string
}

// SecondInstanceEvent carries the arguments of a later launch.
type SecondInstanceEvent struct {
	BaseEvent
	RelayID          string
	Args             []string
	WorkingDirectory string
}

// LaunchEvent carries the process's own argument vector.
type LaunchEvent struct {
	BaseEvent
	Args []string
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultBuffer
	}
	if bufferSize > MaxBuffer {
		bufferSize = MaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers without blocking. An event is
// dropped for a subscriber whose buffer is full.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// PublishURLOpened is a convenience method for publishing a callback URL.
func (eb *EventBus) PublishURLOpened(url string) {
	eb.Publish(&URLOpenedEvent{
		BaseEvent: BaseEvent{EventType: EventURLOpened, Time: time.Now()},
		URL:       url,
	})
}

// PublishSecondInstance is a convenience method for publishing relayed
// launch arguments.
func (eb *EventBus) PublishSecondInstance(relayID string, args []string, workingDir string) {
	eb.Publish(&SecondInstanceEvent{
		BaseEvent:        BaseEvent{EventType: EventSecondInstance, Time: time.Now()},
		RelayID:          relayID,
		Args:             append([]string(nil), args...),
		WorkingDirectory: workingDir,
	})
}

// PublishLaunch is a convenience method for publishing the startup
// argument vector.
func (eb *EventBus) PublishLaunch(args []string) {
	eb.Publish(&LaunchEvent{
		BaseEvent: BaseEvent{EventType: EventLaunch, Time: time.Now()},
		Args:      append([]string(nil), args...),
	})
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}

	for _, ch := range eb.all {
		close(ch)
	}
}

// UnsubscribeAll removes a subscription channel from all event types
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	for eventType, subscribers := range eb.subscribers {
		for i, subCh := range subscribers {
			if subCh == ch {
				subscribers[i] = subscribers[len(subscribers)-1]
				eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
				close(subCh)
				break
			}
		}
	}

	for i, subCh := range eb.all {
		if subCh == ch {
			eb.all[i] = eb.all[len(eb.all)-1]
			eb.all = eb.all[:len(eb.all)-1]
			close(subCh)
			break
		}
	}
}

// GetDroppedEventCount returns the total number of events dropped due to full buffers
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}
