package wailsapp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algorandfoundation/algokit-lora/internal/deeplink"
)

func TestRuntime_NoWindowBeforeStartup(t *testing.T) {
	rt, rec := newTestRuntime()

	assert.False(t, rt.Ready())
	assert.ErrorIs(t, rt.Emit("deep-link-received", "algokit-lora://x"), deeplink.ErrNoWindow)
	assert.ErrorIs(t, rt.Eval("window.deepLink=1;"), deeplink.ErrNoWindow)
	assert.ErrorIs(t, rt.Focus(), deeplink.ErrNoWindow)

	assert.Empty(t, rec.Emitted())
	assert.Empty(t, rec.Scripts())
	assert.Zero(t, rec.Focused())
}

func TestRuntime_AttachedForwardsCalls(t *testing.T) {
	rt, rec := newTestRuntime()
	rt.attach(context.Background())

	require.NoError(t, rt.Emit("deep-link-received", "algokit-lora://x"))
	require.NoError(t, rt.Eval("window.deepLink=\"algokit-lora://x\";"))
	require.NoError(t, rt.Focus())

	assert.Equal(t, []emitted{{"deep-link-received", "algokit-lora://x"}}, rec.Emitted())
	assert.Equal(t, []string{"window.deepLink=\"algokit-lora://x\";"}, rec.Scripts())
	assert.Equal(t, 1, rec.Focused())
}

func TestRuntime_ReadyAfterPageLoad(t *testing.T) {
	rt, _ := newTestRuntime()

	rt.markLoaded()
	assert.False(t, rt.Ready(), "no window yet")

	rt.attach(context.Background())
	assert.False(t, rt.Ready(), "window exists but the page has not loaded")

	rt.markLoaded()
	assert.True(t, rt.Ready())

	rt.detach()
	assert.False(t, rt.Ready())
}

func TestRuntime_DetachDropsLaterCalls(t *testing.T) {
	rt, rec := newTestRuntime()
	rt.attach(context.Background())
	rt.detach()

	assert.ErrorIs(t, rt.Emit("e", "p"), deeplink.ErrNoWindow)
	assert.Empty(t, rec.Emitted())
}
