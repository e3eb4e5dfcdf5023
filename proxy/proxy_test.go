package proxy_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wippyai/handle-guard/engine"
	guarderrors "github.com/wippyai/handle-guard/errors"
	"github.com/wippyai/handle-guard/guardtest"
	"github.com/wippyai/handle-guard/proxy"
	"github.com/wippyai/handle-guard/resource"
)

var (
	_ proxy.Source = (*resource.Table)(nil)
	_ proxy.Source = (*engine.Family)(nil)
)

func TestConnection_Close(t *testing.T) {
	ctx := context.Background()
	table := resource.NewTable("connection")

	c, err := proxy.NewConnection(ctx, table, "db:5432")
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	if !table.Alive(c.Handle()) {
		t.Fatal("handle not live after open")
	}
	if got := c.String(); got != "connection(db:5432)#1" {
		t.Fatalf("String() = %q", got)
	}

	c.Close(ctx)
	c.Close(ctx)

	if table.Len() != 0 {
		t.Fatalf("Len() = %d after Close", table.Len())
	}
}

func TestNewCredential_SourceError(t *testing.T) {
	ctx := context.Background()
	table := resource.NewTable("credential")
	table.Close()

	_, err := proxy.NewCredential(ctx, table, "alice")
	if err == nil {
		t.Fatal("expected error from closed source")
	}
	if !errors.Is(err, resource.ErrClosed) {
		t.Fatalf("error %v does not wrap ErrClosed", err)
	}
}

func TestWallet_EngineExhausted(t *testing.T) {
	ctx := context.Background()
	eng, err := engine.New(ctx, nil)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	defer eng.Close(ctx)

	f, err := eng.Family(ctx, "wallet")
	if err != nil {
		t.Fatalf("Family: %v", err)
	}
	for i := 0; i < engine.GuestCapacity; i++ {
		if _, err := f.Open(ctx); err != nil {
			t.Fatalf("Open: %v", err)
		}
	}

	_, err = proxy.NewWallet(ctx, f, "cold")
	var gerr *guarderrors.Error
	if !errors.As(err, &gerr) || gerr.Kind != guarderrors.KindExhausted {
		t.Fatalf("NewWallet = %v, want exhausted", err)
	}
}

func dropProxies(ctx context.Context, t *testing.T, table *resource.Table, f *engine.Family) {
	t.Helper()
	for i := 0; i < 20; i++ {
		if _, err := proxy.NewConnection(ctx, table, "cache:6379"); err != nil {
			t.Fatalf("NewConnection: %v", err)
		}
		if _, err := proxy.NewWallet(ctx, f, "hot"); err != nil {
			t.Fatalf("NewWallet: %v", err)
		}
	}
}

func TestProxies_DroppedAreCollected(t *testing.T) {
	ctx := context.Background()
	table := resource.NewTable("connection")
	eng, err := engine.New(ctx, nil)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	defer eng.Close(ctx)
	wallets, err := eng.Family(ctx, "wallet")
	if err != nil {
		t.Fatalf("Family: %v", err)
	}

	cred, err := proxy.NewCredential(ctx, table, "kept")
	if err != nil {
		t.Fatalf("NewCredential: %v", err)
	}

	dropProxies(ctx, t, table, wallets)

	ok := guardtest.CollectFor(5*time.Second, func() bool {
		n, err := wallets.Live(ctx)
		return err == nil && n == 0 && table.Len() == 1
	})
	if !ok {
		n, _ := wallets.Live(ctx)
		t.Fatalf("table Len() = %d, wallet live = %d", table.Len(), n)
	}
	if !table.Alive(cred.Handle()) {
		t.Fatal("reachable credential was released")
	}

	cred.Close(ctx)
	if table.Len() != 0 {
		t.Fatalf("Len() = %d after Close", table.Len())
	}
}
