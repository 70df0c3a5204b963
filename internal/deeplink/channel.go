package deeplink

import "encoding/json"

// Channel names the two ways a URL reaches the UI: an emitted event and a
// global variable assigned by script injection.
type Channel struct {
	Event  string
	Global string
}

var (
	// Canonical is the channel the current UI listens on.
	Canonical = Channel{Event: "deep-link-received", Global: "deepLink"}

	// Legacy is the channel used by older UI builds.
	Legacy = Channel{Event: "scheme-request-received", Global: "urlSchemeRequest"}
)

// ChannelFor picks Legacy when legacy is set, Canonical otherwise.
func ChannelFor(legacy bool) Channel {
	if legacy {
		return Legacy
	}
	return Canonical
}

// AssignScript returns JavaScript assigning raw to window.<Global>. The
// value is JSON-encoded so quotes, backslashes and line separators in the
// URL stay inside the string literal.
func (c Channel) AssignScript(raw string) string {
	lit, _ := json.Marshal(raw)
	return "window." + c.Global + "=" + string(lit) + ";"
}
