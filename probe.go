package handleguard

import (
	"context"
	"runtime"
	"time"

	"github.com/wippyai/handle-guard/errors"
)

const probeInterval = 10 * time.Millisecond

// probe carries a pointer so the allocator never batches it into a tiny
// block, which could delay its cleanup indefinitely.
type probe struct {
	next *probe
	_    [32]byte
}

// CheckCleanup verifies that runtime cleanups run in this process by
// registering one on a throwaway object and forcing collections until it
// fires. Without a working cleanup facility, unreleased proxies leak their
// handles, so callers should treat an error as fatal at startup.
// ctx bounds the wait and should carry a deadline.
func CheckCleanup(ctx context.Context) error {
	fired := make(chan struct{})
	armProbe(fired)

	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()

	for {
		runtime.GC()
		select {
		case <-fired:
			return nil
		case <-ctx.Done():
			return errors.New(errors.PhaseStartup, errors.KindUnsupported).
				Detail("runtime cleanup did not run").
				Cause(ctx.Err()).
				Build()
		case <-ticker.C:
		}
	}
}

func armProbe(fired chan struct{}) {
	p := new(probe)
	runtime.AddCleanup(p, func(ch chan struct{}) { close(ch) }, fired)
}
