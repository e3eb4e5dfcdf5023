// Package handleguard ties the lifetime of foreign resources to Go values.
//
// A foreign component (a C library, a WASM guest, a native service) hands out
// integer handles and exposes a release operation per resource family. Go code
// wraps each handle in a proxy value. The proxy can be released explicitly,
// and if nobody does, the handle is released automatically some time after
// the proxy becomes unreachable.
//
// # Guard
//
// Concrete proxies embed a Guard and install their handle once, during
// construction:
//
//	type Connection struct {
//	    handleguard.Guard
//	    endpoint string
//	}
//
//	func NewConnection(ctx context.Context, lib *Library, endpoint string) (*Connection, error) {
//	    h, err := lib.Open(ctx, endpoint)
//	    if err != nil {
//	        return nil, err
//	    }
//	    c := &Connection{endpoint: endpoint}
//	    c.Install(h, lib) // lib implements handleguard.Releaser
//	    return c, nil
//	}
//
// Proxies are used through pointers. A proxy copied after Install does not
// own the handle: Handle and Release panic on the copy with errors.KindCopied.
//
// Install registers a runtime cleanup that captures only the handle value and
// the releaser. The cleanup never references the proxy, so registering it does
// not keep the proxy alive.
//
// # Releasers
//
// A Releaser must accept any handle it ever issued, including handles that are
// already released, and must not fail in a way the caller can observe. Guard
// never deduplicates: an explicit Release followed by collection calls the
// releaser twice.
//
// A Releaser must not reference the proxy that owns the guard. A closure over
// the proxy makes the proxy reachable from its own cleanup and it will never
// be collected.
//
// # Observers
//
// Subscribe an Observer to receive Installed, Released and Collected events.
// Collected events are delivered on the runtime's cleanup goroutine.
//
// # Startup
//
// CheckCleanup verifies that runtime cleanups actually run in the current
// process. Treat a failure as fatal.
package handleguard
