package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	handleguard "github.com/wippyai/handle-guard"
	"github.com/wippyai/handle-guard/engine"
	"github.com/wippyai/handle-guard/guardtest"
	"github.com/wippyai/handle-guard/proxy"
)

type options struct {
	wasmFile string
	families []string
	count    int
	drop     float64
	timeout  time.Duration
}

// proxyHandle is what every proxy in package proxy provides.
type proxyHandle interface {
	Handle() handleguard.Handle
	Close(ctx context.Context)
	fmt.Stringer
}

// tally counts guard events seen by the process.
type tally struct {
	installed atomic.Int64
	released  atomic.Int64
	collected atomic.Int64
}

func (t *tally) OnGuardEvent(ev handleguard.Event) {
	switch ev.Type {
	case handleguard.EventInstalled:
		t.installed.Add(1)
	case handleguard.EventReleased:
		t.released.Add(1)
	case handleguard.EventCollected:
		t.collected.Add(1)
	}
}

type eventCounts struct {
	installed int64
	released  int64
	collected int64
}

func (t *tally) snapshot() eventCounts {
	return eventCounts{
		installed: t.installed.Load(),
		released:  t.released.Load(),
		collected: t.collected.Load(),
	}
}

type app struct {
	eng      *engine.Engine
	families []*engine.Family
	events   *tally
	opts     options
}

func newApp(ctx context.Context, opts options) (*app, error) {
	if len(opts.families) == 0 {
		return nil, fmt.Errorf("no families given")
	}

	cfg := &engine.Config{}
	if opts.wasmFile != "" {
		data, err := os.ReadFile(opts.wasmFile)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		cfg.Guest = data
	}

	eng, err := engine.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load guest: %w", err)
	}

	a := &app{eng: eng, events: &tally{}, opts: opts}
	for _, name := range opts.families {
		f, err := eng.Family(ctx, name)
		if err != nil {
			eng.Close(ctx)
			return nil, fmt.Errorf("family %s: %w", name, err)
		}
		a.families = append(a.families, f)
	}

	handleguard.Subscribe(a.events)
	return a, nil
}

func (a *app) close(ctx context.Context) {
	handleguard.Unsubscribe(a.events)
	a.eng.Close(ctx)
}

// openProxy opens the proxy type matching the family name.
func openProxy(ctx context.Context, f *engine.Family, seq int) (proxyHandle, error) {
	label := fmt.Sprintf("%s-%d", f.Family(), seq)
	switch f.Family() {
	case "credential":
		return proxy.NewCredential(ctx, f, label)
	case "wallet":
		return proxy.NewWallet(ctx, f, label)
	default:
		return proxy.NewConnection(ctx, f, label)
	}
}

type familyReport struct {
	name   string
	before uint32
	after  uint32
}

type report struct {
	families []familyReport
	events   eventCounts
	drained  bool
}

// scenario opens count proxies per family, closes the kept share explicitly,
// drops the rest and waits for the collector to return their handles.
func (a *app) scenario(ctx context.Context) (report, error) {
	keep := a.opts.count - int(float64(a.opts.count)*a.opts.drop)

	var rep report
	for _, f := range a.families {
		if err := openAndDrop(ctx, f, a.opts.count, keep); err != nil {
			return rep, err
		}
		live, err := f.Live(ctx)
		if err != nil {
			return rep, err
		}
		rep.families = append(rep.families, familyReport{name: f.Family(), before: live})
	}

	rep.drained = guardtest.CollectFor(a.opts.timeout, func() bool {
		return a.totalLive(ctx) == 0
	})

	for i, f := range a.families {
		live, err := f.Live(ctx)
		if err != nil {
			return rep, err
		}
		rep.families[i].after = live
	}
	rep.events = a.events.snapshot()
	return rep, nil
}

// openAndDrop leaves count-keep proxies unreachable when it returns and
// closes the others.
func openAndDrop(ctx context.Context, f *engine.Family, count, keep int) error {
	kept := make([]proxyHandle, 0, keep)
	for i := 0; i < count; i++ {
		p, err := openProxy(ctx, f, i)
		if err != nil {
			return err
		}
		if i < keep {
			kept = append(kept, p)
		}
	}
	for _, p := range kept {
		p.Close(ctx)
	}
	return nil
}

func (a *app) totalLive(ctx context.Context) uint32 {
	var total uint32
	for _, f := range a.families {
		n, err := f.Live(ctx)
		if err != nil {
			continue
		}
		total += n
	}
	return total
}
