package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewTimeout(t *testing.T) {
	if got := New(Options{}).Timeout; got != 0 {
		t.Fatalf("Timeout = %s, want 0", got)
	}
	if got := New(Options{Timeout: -time.Second}).Timeout; got != 0 {
		t.Fatalf("Timeout = %s, want 0 for negative input", got)
	}
	if got := New(Options{Timeout: 3 * time.Second}).Timeout; got != 3*time.Second {
		t.Fatalf("Timeout = %s, want 3s", got)
	}
}

func TestNewPreferIPv4Dials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := New(Options{PreferIPv4: true, Timeout: 5 * time.Second})
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestNewResponseHeaderTimeout(t *testing.T) {
	transport := New(Options{ResponseHeaderTimeout: time.Minute}).Transport.(*http.Transport)
	if transport.ResponseHeaderTimeout != time.Minute {
		t.Fatalf("ResponseHeaderTimeout = %s, want 1m", transport.ResponseHeaderTimeout)
	}

	transport = New(Options{}).Transport.(*http.Transport)
	if transport.ResponseHeaderTimeout != 0 {
		t.Fatalf("ResponseHeaderTimeout = %s, want none", transport.ResponseHeaderTimeout)
	}
}

func TestResponseHeaderTimeoutFiresOnStalledServer(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := New(Options{ResponseHeaderTimeout: 50 * time.Millisecond})
	resp, err := client.Get(srv.URL)
	if err == nil {
		resp.Body.Close()
		t.Fatalf("expected a timeout from a server that never answers")
	}
}
