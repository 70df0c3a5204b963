// Package deeplink delivers custom-scheme URLs handed to the process by the
// operating system into the embedded web UI.
//
// A URL arrives either through the host's URL-open callback (macOS) or as a
// process argument (Linux, Windows, and every later launch relayed by the
// single-instance lock). It is checked against the registered scheme and,
// when it matches, emitted to the UI as a named event. Nothing is stored:
// if no window is ready the URL is dropped.
package deeplink

import (
	"fmt"
	"strings"
)

// Scheme is a validated, lower-case custom URL scheme such as "algokit-lora".
type Scheme struct {
	name string
}

// NewScheme validates name against the RFC 3986 scheme grammar:
// ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func NewScheme(name string) (Scheme, error) {
	if name == "" {
		return Scheme{}, fmt.Errorf("%w: empty", ErrInvalidScheme)
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return Scheme{}, fmt.Errorf("%w: %q", ErrInvalidScheme, name)
		}
	}
	return Scheme{name: strings.ToLower(name)}, nil
}

// MustScheme is NewScheme for build-time constants; it panics on error.
func MustScheme(name string) Scheme {
	s, err := NewScheme(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the scheme without separator, e.g. "algokit-lora".
func (s Scheme) Name() string {
	return s.name
}

// Prefix returns the string every deep link must start with, e.g.
// "algokit-lora://".
func (s Scheme) Prefix() string {
	return s.name + "://"
}

// Matches reports whether raw starts with the scheme prefix. The scheme
// part is compared case-insensitively.
func (s Scheme) Matches(raw string) bool {
	if s.name == "" {
		return false
	}
	p := s.Prefix()
	return len(raw) >= len(p) && strings.EqualFold(raw[:len(p)], p)
}

// Parse wraps raw in a Request if it matches the scheme.
func (s Scheme) Parse(raw string) (Request, error) {
	if !s.Matches(raw) {
		return Request{}, ErrForeignScheme
	}
	return Request{Raw: raw}, nil
}

// Request is one deep link handed to the process. Raw is delivered to the
// UI byte-for-byte as received.
type Request struct {
	Raw string
}

func (r Request) String() string {
	return r.Raw
}
