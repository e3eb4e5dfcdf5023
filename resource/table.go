package resource

import (
	"context"

	"go.uber.org/zap"

	handleguard "github.com/wippyai/handle-guard"
	"github.com/wippyai/handle-guard/errors"
)

// Table is a foreign handle table for one resource family.
// It implements handleguard.Releaser and is safe for concurrent use.
type Table struct {
	backend Backend
	family  string
}

var _ handleguard.Releaser = (*Table)(nil)

// NewTable creates a table backed by a LocalBackend.
func NewTable(family string) *Table {
	return NewTableWithBackend(family, NewLocalBackend())
}

// NewTableWithBackend creates a table over a custom backend.
func NewTableWithBackend(family string, backend Backend) *Table {
	return &Table{
		backend: backend,
		family:  family,
	}
}

// Family returns the resource family name.
func (t *Table) Family() string {
	return t.family
}

// Open issues a handle with no attached value.
func (t *Table) Open(_ context.Context) (Handle, error) {
	return t.Insert(nil)
}

// Insert stores value and returns its handle.
func (t *Table) Insert(value any) (Handle, error) {
	h, err := t.backend.Create(value)
	if err != nil {
		return 0, errors.New(errors.PhaseRuntime, kindOf(err)).
			Family(t.family).
			Detail("issue handle").
			Cause(err).
			Build()
	}
	return h, nil
}

// Get retrieves a value by handle.
func (t *Table) Get(handle Handle) (any, bool) {
	return t.backend.Get(handle)
}

// Alive reports whether handle refers to a live resource.
func (t *Table) Alive(handle Handle) bool {
	_, ok := t.backend.Get(handle)
	return ok
}

// ReleaseHandle releases handle. Unknown, zero and already-released handles
// are ignored.
func (t *Table) ReleaseHandle(_ context.Context, handle Handle) {
	if _, ok := t.Remove(handle); !ok {
		handleguard.Logger().Debug("ignored release of dead handle",
			zap.Uint32("handle", uint32(handle)),
			zap.String("family", t.family))
	}
}

// Remove drops a resource and returns (value, true) if it was live.
func (t *Table) Remove(handle Handle) (any, bool) {
	value, ok := t.backend.Drop(handle)
	if !ok {
		return nil, false
	}

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}
	return value, true
}

// Len returns the number of live resources.
func (t *Table) Len() int {
	return t.backend.Len()
}

// Each iterates over live resources in handle order.
func (t *Table) Each(fn func(Handle, any) bool) {
	t.backend.Each(fn)
}

// Clear releases every live resource but keeps the table open.
func (t *Table) Clear() {
	var handles []Handle
	t.backend.Each(func(h Handle, _ any) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		t.Remove(h)
	}
}

// Close releases all resources and stops issuing handles.
// Releases that arrive afterwards are ignored.
func (t *Table) Close() error {
	return t.backend.Close()
}

func kindOf(err error) errors.Kind {
	if e, ok := err.(*errors.Error); ok {
		return e.Kind
	}
	return errors.KindInvalidData
}
