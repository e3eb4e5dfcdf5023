package engine

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	handleguard "github.com/wippyai/handle-guard"
	"github.com/wippyai/handle-guard/errors"
)

// Family is one module instance of the foreign component. It owns the handle
// space of a single resource family.
type Family struct {
	module  api.Module
	open    api.Function
	release api.Function
	live    api.Function
	alive   api.Function
	name    string
	abi     ABI
	mu      sync.Mutex
	closed  bool
}

var (
	_ handleguard.Releaser    = (*Family)(nil)
	_ handleguard.FamilyNamer = (*Family)(nil)
)

// Family returns the family name.
func (f *Family) Family() string {
	return f.name
}

// Open asks the guest for a new handle.
func (f *Family) Open(ctx context.Context) (handleguard.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, errors.Closed(errors.PhaseRuntime, f.name)
	}

	results, err := f.open.Call(ctx)
	if err != nil {
		return 0, errors.Call(f.name, f.abi.Open, err)
	}

	h := api.DecodeU32(results[0])
	if h == 0 {
		return 0, errors.New(errors.PhaseRuntime, errors.KindExhausted).
			Family(f.name).
			Detail("guest has no free handles").
			Build()
	}
	return handleguard.Handle(h), nil
}

// ReleaseHandle tells the guest to free h. Failures are logged, never returned,
// since the caller may be the runtime cleanup goroutine.
func (f *Family) ReleaseHandle(ctx context.Context, h handleguard.Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		Logger().Debug("release after close ignored",
			zap.String("family", f.name),
			zap.Uint32("handle", uint32(h)))
		return
	}

	if _, err := f.release.Call(ctx, api.EncodeU32(uint32(h))); err != nil {
		Logger().Warn("foreign release failed",
			zap.String("family", f.name),
			zap.Uint32("handle", uint32(h)),
			zap.Error(err))
	}
}

// Live returns the number of handles the guest considers live.
func (f *Family) Live(ctx context.Context) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.live == nil {
		return 0, errors.NotFound(errors.PhaseRuntime, "export", f.abi.Live)
	}
	if f.closed {
		return 0, errors.Closed(errors.PhaseRuntime, f.name)
	}

	results, err := f.live.Call(ctx)
	if err != nil {
		return 0, errors.Call(f.name, f.abi.Live, err)
	}
	return api.DecodeU32(results[0]), nil
}

// Alive reports whether the guest still holds h.
func (f *Family) Alive(ctx context.Context, h handleguard.Handle) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.alive == nil {
		return false, errors.NotFound(errors.PhaseRuntime, "export", f.abi.Alive)
	}
	if f.closed {
		return false, errors.Closed(errors.PhaseRuntime, f.name)
	}

	results, err := f.alive.Call(ctx, api.EncodeU32(uint32(h)))
	if err != nil {
		return false, errors.Call(f.name, f.abi.Alive, err)
	}
	return api.DecodeU32(results[0]) != 0, nil
}

// Close closes the module instance. Every handle it issued becomes invalid.
func (f *Family) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	return f.module.Close(ctx)
}
