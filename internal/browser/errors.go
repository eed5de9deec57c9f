package browser

import (
	"errors"
	"strings"
)

// ErrTimeout is returned when a waited-for element never appears.
var ErrTimeout = errors.New("timed out waiting for element")

// ErrStale is the canonical stale-reference error; fakes return it and
// IsStale recognises it alongside the driver's own error text.
var ErrStale = errors.New("stale element reference")

// ErrNoSuchElement mirrors the driver's "no such element" error.
var ErrNoSuchElement = errors.New("no such element")

// IsStale reports whether err means the element reference no longer points
// at a node in the current DOM.
func IsStale(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrStale) {
		return true
	}
	return strings.Contains(err.Error(), "stale element reference")
}

// IsNoSuchElement reports whether err means the locator matched nothing.
func IsNoSuchElement(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoSuchElement) {
		return true
	}
	return strings.Contains(err.Error(), "no such element")
}
