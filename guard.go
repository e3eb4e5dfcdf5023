package handleguard

import (
	"context"
	"runtime"

	"go.uber.org/zap"

	"github.com/wippyai/handle-guard/errors"
)

// Handle is an opaque reference to a resource owned by a foreign component.
type Handle uint32

// Releaser frees foreign resources for one resource family.
// ReleaseHandle must tolerate handles that were already released or were
// never valid, and must be safe to call concurrently for the same handle.
type Releaser interface {
	ReleaseHandle(ctx context.Context, h Handle)
}

// ReleaseFunc adapts a plain function to Releaser.
type ReleaseFunc func(ctx context.Context, h Handle)

// ReleaseHandle calls f(ctx, h).
func (f ReleaseFunc) ReleaseHandle(ctx context.Context, h Handle) {
	f(ctx, h)
}

// FamilyNamer is optionally implemented by releasers to label events and logs.
type FamilyNamer interface {
	Family() string
}

// Guard owns exactly one foreign handle. Embed it by value in a proxy type.
// The zero value holds no handle; Install must be called once before use.
// A proxy must not be copied after Install: the automatic release follows the
// original allocation, so Handle and Release panic on a copy.
type Guard struct {
	releaser  Releaser
	self      *Guard // set by Install; differs on a copy
	handle    Handle
	installed bool
}

// cleanupArg is everything the cleanup needs. It must never point back at
// the guard or its owner.
type cleanupArg struct {
	releaser Releaser
	family   string
	handle   Handle
}

// Install stores h and arranges for r.ReleaseHandle(h) to run after the
// guard's owner is collected. It panics if called twice or with a nil
// releaser.
func (g *Guard) Install(h Handle, r Releaser) {
	if r == nil {
		panic(errors.InvalidInput(errors.PhaseInstall, "nil releaser"))
	}
	if f, ok := r.(ReleaseFunc); ok && f == nil {
		panic(errors.InvalidInput(errors.PhaseInstall, "nil release func"))
	}
	if g.installed {
		panic(errors.AlreadyInstalled(uint32(g.handle), uint32(h)))
	}

	g.handle = h
	g.releaser = r
	g.self = g
	g.installed = true
	g.registerCleanup()

	family := familyOf(r)
	Logger().Debug("handle installed",
		zap.Uint32("handle", uint32(h)),
		zap.String("family", family))
	notify(Event{Type: EventInstalled, Handle: h, Family: family})
}

// registerCleanup attaches the automatic release to g. g may point into the
// middle of a proxy struct; the cleanup runs once the whole allocation is
// unreachable.
func (g *Guard) registerCleanup() {
	runtime.AddCleanup(g, collect, cleanupArg{
		releaser: g.releaser,
		family:   familyOf(g.releaser),
		handle:   g.handle,
	})
}

// Release synchronously releases the handle through the releaser.
// It may be called any number of times; every call reaches the releaser.
// The pending automatic release is not cancelled.
func (g *Guard) Release(ctx context.Context) {
	if !g.installed {
		panic(errors.NotInitialized(errors.PhaseRelease, "guard handle"))
	}
	g.copyCheck(errors.PhaseRelease)

	h, r := g.handle, g.releaser
	r.ReleaseHandle(ctx, h)

	family := familyOf(r)
	Logger().Debug("handle released",
		zap.Uint32("handle", uint32(h)),
		zap.String("family", family))
	notify(Event{Type: EventReleased, Handle: h, Family: family})

	// the owner must stay reachable until the foreign call has returned
	runtime.KeepAlive(g)
}

// Handle returns the installed handle. It panics before Install.
func (g *Guard) Handle() Handle {
	if !g.installed {
		panic(errors.NotInitialized(errors.PhaseAccess, "guard handle"))
	}
	g.copyCheck(errors.PhaseAccess)
	return g.handle
}

func (g *Guard) copyCheck(phase errors.Phase) {
	if g.self != g {
		panic(errors.Copied(phase, uint32(g.handle)))
	}
}

// Installed reports whether Install has been called on this guard.
// It reports false for a copy of an installed guard.
func (g *Guard) Installed() bool {
	return g.installed && g.self == g
}

func collect(arg cleanupArg) {
	log := Logger()
	defer func() {
		if r := recover(); r != nil {
			log.Error("releaser panicked during automatic release",
				zap.Uint32("handle", uint32(arg.handle)),
				zap.String("family", arg.family),
				zap.Any("panic", r))
		}
	}()

	log.Debug("proxy collected, releasing handle",
		zap.Uint32("handle", uint32(arg.handle)),
		zap.String("family", arg.family))
	arg.releaser.ReleaseHandle(context.Background(), arg.handle)
	notify(Event{Type: EventCollected, Handle: arg.handle, Family: arg.family})
}

func familyOf(r Releaser) string {
	if n, ok := r.(FamilyNamer); ok {
		return n.Family()
	}
	return ""
}
