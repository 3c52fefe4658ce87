package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestGatewayDialerPlacesBatch(t *testing.T) {
	var received DialBatch
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calls/originate" {
			t.Errorf("expected /calls/originate, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode batch: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d := NewGatewayDialer(srv.URL, 5*time.Second, zerolog.Nop())

	ids, err := d.PlaceCalls(context.Background(), "camp-1", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 7 {
		t.Errorf("expected 7 attempt IDs, got %d", len(ids))
	}
	if received.CampaignID != "camp-1" {
		t.Errorf("expected campaign camp-1, got %s", received.CampaignID)
	}
	if len(received.AttemptIDs) != 7 {
		t.Errorf("expected 7 attempt IDs in batch, got %d", len(received.AttemptIDs))
	}
	if received.BatchID == "" {
		t.Error("expected non-empty batch ID")
	}
}

func TestGatewayDialerZeroCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("gateway must not be called for zero count")
	}))
	defer srv.Close()

	d := NewGatewayDialer(srv.URL, 5*time.Second, zerolog.Nop())
	ids, err := d.PlaceCalls(context.Background(), "camp-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ids != nil {
		t.Errorf("expected no attempt IDs, got %v", ids)
	}
}

func TestGatewayDialerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	d := NewGatewayDialer(srv.URL, 5*time.Second, zerolog.Nop())
	if _, err := d.PlaceCalls(context.Background(), "camp-1", 3); err == nil {
		t.Error("expected error for non-2xx gateway response")
	}
}

func TestNewDialerFallsBackToNoop(t *testing.T) {
	d := NewDialer("", time.Second, zerolog.Nop())
	if _, ok := d.(*NoopDialer); !ok {
		t.Errorf("expected NoopDialer without gateway URL, got %T", d)
	}

	d = NewDialer("http://gateway:9999", time.Second, zerolog.Nop())
	if _, ok := d.(*GatewayDialer); !ok {
		t.Errorf("expected GatewayDialer with gateway URL, got %T", d)
	}
}
