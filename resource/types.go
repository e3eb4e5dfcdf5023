package resource

import (
	handleguard "github.com/wippyai/handle-guard"
)

// Handle is the handle type issued by tables.
type Handle = handleguard.Handle

// Backend provides the underlying storage mechanism for a table.
type Backend interface {
	// Create stores a value and returns a fresh handle.
	Create(value any) (Handle, error)

	// Get retrieves a value by handle.
	Get(handle Handle) (any, bool)

	// Drop removes a resource and returns (value, true) if it was live.
	// Unknown and already-dropped handles return (nil, false).
	Drop(handle Handle) (any, bool)

	// Len returns the number of live resources.
	Len() int

	// Each iterates over live resources in handle order.
	Each(fn func(Handle, any) bool)

	// Close drops every resource and rejects further Create calls.
	Close() error
}

// Dropper is optionally implemented by resource values that need cleanup.
type Dropper interface {
	Drop()
}
