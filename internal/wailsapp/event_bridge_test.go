package wailsapp

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algorandfoundation/algokit-lora/internal/deeplink"
	"github.com/algorandfoundation/algokit-lora/internal/events"
	"github.com/algorandfoundation/algokit-lora/internal/logging"
)

type bridgeFixture struct {
	bus     *events.EventBus
	bridge  *EventBridge
	rec     *recordingRuntime
	rt      *Runtime
	handled chan events.Event
}

func newBridgeFixture(t *testing.T, strategy deeplink.Strategy) *bridgeFixture {
	t.Helper()
	bus := events.NewEventBus(10)
	rt, rec := newTestRuntime()
	d := deeplink.NewDispatcher(deeplink.MustScheme("algokit-lora"), deeplink.Canonical, rt, rt, nil)

	f := &bridgeFixture{
		bus:     bus,
		bridge:  NewEventBridge(bus, d, strategy, nil),
		rec:     rec,
		rt:      rt,
		handled: make(chan events.Event, 10),
	}
	f.bridge.delivered = func(e events.Event) { f.handled <- e }
	require.NoError(t, f.bridge.Start())
	t.Cleanup(func() {
		f.bridge.Stop()
		bus.Close()
	})
	return f
}

func (f *bridgeFixture) wait(t *testing.T) {
	t.Helper()
	select {
	case <-f.handled:
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for event to be handled")
	}
}

func TestEventBridge_LaunchWithArgvStrategy(t *testing.T) {
	f := newBridgeFixture(t, deeplink.ArgvStrategy{})
	f.rt.attach(context.Background())

	f.bus.PublishLaunch([]string{"lora", "algokit-lora://asset/123"})
	f.wait(t)

	assert.Equal(t, []emitted{{"deep-link-received", "algokit-lora://asset/123"}}, f.rec.Emitted())
	assert.Equal(t, []string{`window.deepLink="algokit-lora://asset/123";`}, f.rec.Scripts())
}

func TestEventBridge_LaunchWithoutArgs(t *testing.T) {
	f := newBridgeFixture(t, deeplink.ArgvStrategy{})
	f.rt.attach(context.Background())

	f.bus.PublishLaunch([]string{"lora"})
	f.wait(t)

	assert.Empty(t, f.rec.Emitted())
	assert.Empty(t, f.rec.Scripts())
}

func TestEventBridge_LaunchIgnoredByCallbackStrategy(t *testing.T) {
	f := newBridgeFixture(t, deeplink.CallbackStrategy{})
	f.rt.attach(context.Background())

	f.bus.PublishLaunch([]string{"lora", "algokit-lora://asset/123"})
	f.wait(t)

	assert.Empty(t, f.rec.Emitted())
}

func TestEventBridge_URLOpenedWithCallbackStrategy(t *testing.T) {
	f := newBridgeFixture(t, deeplink.CallbackStrategy{})
	f.rt.attach(context.Background())

	f.bus.PublishURLOpened("algokit-lora://tx/ABC")
	f.wait(t)

	assert.Equal(t, []emitted{{"deep-link-received", "algokit-lora://tx/ABC"}}, f.rec.Emitted())
	assert.Equal(t, []string{`window.deepLink="algokit-lora://tx/ABC";`}, f.rec.Scripts())
}

func TestEventBridge_SecondInstanceFocusesThenDispatches(t *testing.T) {
	f := newBridgeFixture(t, deeplink.ArgvStrategy{})
	f.rt.attach(context.Background())

	f.bus.PublishSecondInstance("id-1", []string{"lora", "--flag", "algokit-lora://a", "https://x"}, "/")
	f.wait(t)

	assert.Equal(t, 1, f.rec.Focused())
	assert.Equal(t, []emitted{{"deep-link-received", "algokit-lora://a"}}, f.rec.Emitted())
	assert.Empty(t, f.rec.Scripts(), "relayed links are emitted only")
}

func TestEventBridge_NoWindowDropsDelivery(t *testing.T) {
	f := newBridgeFixture(t, deeplink.ArgvStrategy{})

	f.bus.PublishSecondInstance("id-1", []string{"lora", "algokit-lora://a"}, "/")
	f.wait(t)

	f.rt.attach(context.Background())
	assert.Empty(t, f.rec.Emitted(), "nothing is queued for a later window")
	assert.Zero(t, f.rec.Focused())
}

func TestEventBridge_StartStop(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	rt, _ := newTestRuntime()
	d := deeplink.NewDispatcher(deeplink.MustScheme("algokit-lora"), deeplink.Canonical, rt, rt, nil)
	bridge := NewEventBridge(bus, d, deeplink.ArgvStrategy{}, nil)

	require.NoError(t, bridge.Start())
	require.NoError(t, bridge.Start())
	bridge.Stop()
	bridge.Stop()

	assert.ErrorIs(t, bridge.Start(), ErrBridgeStopped)
}

func TestEventBridge_StopReportsDroppedEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger("gui", logging.FormatJSON)
	logger.SetOutput(&buf)

	bus := events.NewEventBus(1)
	defer bus.Close()
	_ = bus.Subscribe(events.EventURLOpened) // never drained

	rt, _ := newTestRuntime()
	d := deeplink.NewDispatcher(deeplink.MustScheme("algokit-lora"), deeplink.Canonical, rt, rt, nil)
	bridge := NewEventBridge(bus, d, deeplink.CallbackStrategy{}, logger)
	require.NoError(t, bridge.Start())

	bus.PublishURLOpened("algokit-lora://a")
	bus.PublishURLOpened("algokit-lora://b")
	bridge.Stop()

	require.Positive(t, bus.GetDroppedEventCount())
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"dropped":`)
}

func TestEventBridge_StopWithoutDropsIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger("gui", logging.FormatJSON)
	logger.SetOutput(&buf)

	bus := events.NewEventBus(10)
	defer bus.Close()
	rt, _ := newTestRuntime()
	d := deeplink.NewDispatcher(deeplink.MustScheme("algokit-lora"), deeplink.Canonical, rt, rt, nil)
	bridge := NewEventBridge(bus, d, deeplink.CallbackStrategy{}, logger)
	require.NoError(t, bridge.Start())
	bridge.Stop()

	assert.NotContains(t, buf.String(), `"dropped":`)
}
