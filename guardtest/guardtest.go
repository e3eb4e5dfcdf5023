// Package guardtest provides helpers for testing code built on handleguard.
package guardtest

import (
	"context"
	"runtime"
	"sync"
	"time"

	handleguard "github.com/wippyai/handle-guard"
)

// Recorder is a Releaser that records every call it receives.
// It is safe for concurrent use.
type Recorder struct {
	family string
	calls  []handleguard.Handle
	mu     sync.Mutex
}

// NewRecorder creates a recorder reporting the given family name.
func NewRecorder(family string) *Recorder {
	return &Recorder{family: family}
}

// ReleaseHandle records h.
func (r *Recorder) ReleaseHandle(_ context.Context, h handleguard.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, h)
}

// Family implements handleguard.FamilyNamer.
func (r *Recorder) Family() string {
	return r.family
}

// Calls returns a copy of the recorded handles in call order.
func (r *Recorder) Calls() []handleguard.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]handleguard.Handle, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns how many times h was released.
func (r *Recorder) Count(h handleguard.Handle) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == h {
			n++
		}
	}
	return n
}

// Len returns the total number of recorded calls.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Collect forces garbage collections until cond reports true or ctx is done.
// It returns the final value of cond.
func Collect(ctx context.Context, cond func() bool) bool {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		runtime.GC()
		if cond() {
			return true
		}
		select {
		case <-ctx.Done():
			return cond()
		case <-ticker.C:
		}
	}
}

// CollectFor is Collect with a timeout instead of a context.
func CollectFor(timeout time.Duration, cond func() bool) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return Collect(ctx, cond)
}
