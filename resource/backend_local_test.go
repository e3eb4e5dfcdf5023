package resource

import (
	"errors"
	"sync"
	"testing"
)

func TestLocalBackend_Basic(t *testing.T) {
	b := NewLocalBackend()

	handle, err := b.Create("test value")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if handle == 0 {
		t.Fatal("Expected non-zero handle")
	}

	val, ok := b.Get(handle)
	if !ok {
		t.Fatal("Get failed")
	}
	if val != "test value" {
		t.Fatalf("Expected 'test value', got %v", val)
	}

	val, ok = b.Drop(handle)
	if !ok {
		t.Fatal("Drop failed")
	}
	if val != "test value" {
		t.Fatalf("Expected 'test value', got %v", val)
	}

	if _, ok := b.Get(handle); ok {
		t.Fatal("Expected Get to fail after Drop")
	}
}

func TestLocalBackend_DropIsIdempotent(t *testing.T) {
	b := NewLocalBackend()
	h, _ := b.Create("x")

	if _, ok := b.Drop(h); !ok {
		t.Fatal("first Drop failed")
	}
	for i := 0; i < 3; i++ {
		if _, ok := b.Drop(h); ok {
			t.Fatalf("Drop %d of released handle reported live", i+2)
		}
	}

	for _, invalid := range []Handle{0, h + 1, 1 << 31} {
		if _, ok := b.Drop(invalid); ok {
			t.Fatalf("Drop(%d) of never-issued handle reported live", invalid)
		}
	}
}

func TestLocalBackend_HandlesNeverReused(t *testing.T) {
	b := NewLocalBackend()

	h1, _ := b.Create(1)
	h2, _ := b.Create(2)
	b.Drop(h2)
	b.Drop(h1)

	h3, _ := b.Create(3)
	h4, _ := b.Create(4)

	seen := map[Handle]bool{h1: true, h2: true}
	for _, h := range []Handle{h3, h4} {
		if seen[h] {
			t.Fatalf("handle %d was reused", h)
		}
		seen[h] = true
	}
	if h3 <= h2 || h4 <= h3 {
		t.Fatalf("handles not increasing: %d %d %d %d", h1, h2, h3, h4)
	}
	if b.Last() != h4 {
		t.Fatalf("Last() = %d, want %d", b.Last(), h4)
	}
}

func TestLocalBackend_Exhausted(t *testing.T) {
	b := NewLocalBackend()
	b.last = ^Handle(0)

	_, err := b.Create("overflow")
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("Create at max handle = %v, want ErrExhausted", err)
	}
}

func TestLocalBackend_Close(t *testing.T) {
	b := NewLocalBackend()

	d := &dropCounter{}
	b.Create(d)
	b.Create("plain")

	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if d.load() != 1 {
		t.Fatalf("Drop called %d times on Close, want 1", d.load())
	}

	_, err := b.Create("test")
	if !errors.Is(err, ErrClosed) {
		t.Fatal("Expected ErrClosed after Close")
	}
	if _, ok := b.Drop(1); ok {
		t.Fatal("Drop after Close reported live")
	}
	if b.Len() != 0 {
		t.Fatalf("Len() = %d after Close", b.Len())
	}
}

func TestLocalBackend_Concurrent(t *testing.T) {
	b := NewLocalBackend()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			h, _ := b.Create(id)
			// explicit and automatic release racing on the same handle
			var inner sync.WaitGroup
			inner.Add(2)
			go func() { defer inner.Done(); b.Drop(h) }()
			go func() { defer inner.Done(); b.Drop(h) }()
			inner.Wait()
		}(i)
	}

	wg.Wait()

	if b.Len() != 0 {
		t.Fatalf("Len() = %d after concurrent drops", b.Len())
	}
	if b.Last() != 100 {
		t.Fatalf("Last() = %d, want 100", b.Last())
	}
}

func TestLocalBackend_Len(t *testing.T) {
	b := NewLocalBackend()

	if b.Len() != 0 {
		t.Fatal("Expected Len() == 0 initially")
	}

	h1, _ := b.Create("a")
	h2, _ := b.Create("b")
	b.Create("c")

	if b.Len() != 3 {
		t.Fatalf("Expected Len() == 3, got %d", b.Len())
	}

	b.Drop(h1)
	if b.Len() != 2 {
		t.Fatalf("Expected Len() == 2, got %d", b.Len())
	}

	b.Drop(h2)
	b.Drop(h2)
	if b.Len() != 1 {
		t.Fatalf("Expected Len() == 1, got %d", b.Len())
	}
}

func TestLocalBackend_Each(t *testing.T) {
	b := NewLocalBackend()

	for _, v := range []string{"a", "b", "c", "d"} {
		b.Create(v)
	}
	b.Drop(2)

	var got []Handle
	b.Each(func(h Handle, v any) bool {
		got = append(got, h)
		return true
	})
	want := []Handle{1, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("Each visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Each visited %v, want %v", got, want)
		}
	}

	count := 0
	b.Each(func(Handle, any) bool {
		count++
		return false
	})
	if count != 1 {
		t.Fatalf("Each did not stop early, visited %d", count)
	}
}
