// Package resource provides an in-process foreign handle table.
//
// A Table plays the foreign side of the handleguard contract for resources
// that live in Go memory: it issues integer handles, and its ReleaseHandle
// accepts any handle at all. Unknown, zero and already-released handles are
// ignored, so a proxy may be released explicitly and again by its cleanup.
//
//	conns := resource.NewTable("connection")
//	h, err := conns.Insert(sock)
//	...
//	conns.ReleaseHandle(ctx, h) // drops sock
//	conns.ReleaseHandle(ctx, h) // no-op
//
// # Handle Numbering
//
// Handles are issued in increasing order and never reused. A late automatic
// release for a collected proxy therefore cannot free a newer resource that
// happened to receive the same number. Handle 0 is reserved and always invalid.
//
// # Dropper
//
// Values implementing Dropper have Drop called exactly once, when their handle
// is released or when the table is closed.
package resource
