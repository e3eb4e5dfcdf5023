package resource

import (
	"math"
	"slices"
	"sync"

	"github.com/wippyai/handle-guard/errors"
)

var (
	ErrClosed    = &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindClosed}
	ErrExhausted = &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindExhausted}
)

// LocalBackend is an in-memory backend with monotonic handles.
type LocalBackend struct {
	entries map[Handle]any
	last    Handle
	mu      sync.RWMutex
	closed  bool
}

// NewLocalBackend creates a new in-memory backend.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{
		entries: make(map[Handle]any, 64),
	}
}

// Create stores a value and returns a handle that was never issued before.
func (b *LocalBackend) Create(value any) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}
	if b.last == math.MaxUint32 {
		return 0, ErrExhausted
	}

	b.last++
	b.entries[b.last] = value
	return b.last, nil
}

// Get retrieves a value by handle.
func (b *LocalBackend) Get(handle Handle) (any, bool) {
	if handle == 0 {
		return nil, false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	value, ok := b.entries[handle]
	return value, ok
}

// Drop removes a resource and returns (value, true) if it was live.
func (b *LocalBackend) Drop(handle Handle) (any, bool) {
	if handle == 0 {
		return nil, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	value, ok := b.entries[handle]
	if !ok {
		return nil, false
	}
	delete(b.entries, handle)
	return value, true
}

// Close drops every live resource. Droppers run outside the lock.
func (b *LocalBackend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	values := make([]any, 0, len(b.entries))
	for _, v := range b.entries {
		values = append(values, v)
	}
	b.entries = nil
	b.mu.Unlock()

	for _, v := range values {
		if d, ok := v.(Dropper); ok {
			d.Drop()
		}
	}
	return nil
}

// Len returns the number of live resources.
func (b *LocalBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Each iterates over live resources in handle order.
// fn runs without the lock held and may release handles.
func (b *LocalBackend) Each(fn func(Handle, any) bool) {
	b.mu.RLock()
	handles := make([]Handle, 0, len(b.entries))
	for h := range b.entries {
		handles = append(handles, h)
	}
	b.mu.RUnlock()

	slices.Sort(handles)
	for _, h := range handles {
		v, ok := b.Get(h)
		if !ok {
			continue
		}
		if !fn(h, v) {
			return
		}
	}
}

// Last returns the most recently issued handle, or 0 if none was issued.
func (b *LocalBackend) Last() Handle {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last
}
