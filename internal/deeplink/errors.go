package deeplink

import "errors"

var (
	// ErrForeignScheme is returned for payloads that do not start with the
	// registered scheme prefix. Callers drop these silently.
	ErrForeignScheme = errors.New("url does not use the registered scheme")

	// ErrNoWindow is returned when no window is ready to receive a delivery.
	// The request is dropped; nothing is queued.
	ErrNoWindow = errors.New("no application window available")

	// ErrInvalidScheme is returned by NewScheme for names that are not
	// valid URI schemes.
	ErrInvalidScheme = errors.New("invalid url scheme")
)
