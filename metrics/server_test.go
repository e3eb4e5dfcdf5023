package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	handleguard "github.com/wippyai/handle-guard"
)

func TestServer_StartAndClose(t *testing.T) {
	s := NewServerWithRegistry("127.0.0.1:0", prometheus.NewRegistry())
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	addr := s.Addr()
	if !strings.Contains(addr, ":") || strings.HasSuffix(addr, ":0") {
		t.Errorf("Addr() = %q, expected bound host:port", addr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := http.Get("http://" + addr + "/metrics"); err == nil {
		t.Error("expected error after server close")
	}
}

func TestServer_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)
	m.OnGuardEvent(handleguard.Event{Type: handleguard.EventInstalled, Family: "credential", Handle: 9})
	m.OnGuardEvent(handleguard.Event{Type: handleguard.EventCollected, Family: "credential", Handle: 9})

	s := NewServerWithRegistry("127.0.0.1:0", reg)
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Close(context.Background())

	resp, err := http.Get("http://" + s.Addr() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/plain") {
		t.Errorf("Content-Type = %q, expected text/plain", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	out := string(body)

	for _, want := range []string{
		`handleguard_installed_total{family="credential"} 1`,
		`handleguard_collected_total{family="credential"} 1`,
		`handleguard_outstanding{family="credential"} 0`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in metrics output", want)
		}
	}
}

func TestServer_CloseWithoutStart(t *testing.T) {
	s := NewServer(":0")
	if err := s.Close(context.Background()); err != nil {
		t.Errorf("Close on unstarted server returned error: %v", err)
	}
	if s.Addr() != ":0" {
		t.Errorf("Addr() = %q before Start", s.Addr())
	}
}
