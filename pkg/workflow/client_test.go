package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(url string) *Client {
	return NewClient(url, "test-token", Options{
		Timeout:           2 * time.Second,
		RetryCount:        -1,
		RequestsPerSecond: 1000,
	})
}

func TestSendSuccess(t *testing.T) {
	var gotAuth string
	var gotPayload chatPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":"Sprendimas rastas."}`))
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server.URL)

	out, err := client.Send(context.Background(), "session-1", "kas nutiko?")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if out != "Sprendimas rastas." {
		t.Errorf("output = %q, want %q", out, "Sprendimas rastas.")
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotPayload.SessionID != "session-1" || gotPayload.ChatInput != "kas nutiko?" {
		t.Errorf("payload = %+v", gotPayload)
	}
}

func TestSendAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server.URL)

	_, err := client.Send(context.Background(), "s", "hi")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", authErr.Status)
	}
}

func TestSendUpstreamErrorKeepsStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("workflow crashed"))
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server.URL)

	_, err := client.Send(context.Background(), "s", "hi")
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upErr.Status != http.StatusBadGateway {
		t.Errorf("Status = %d, want 502", upErr.Status)
	}
	if upErr.Body != "workflow crashed" {
		t.Errorf("Body = %q, want upstream body", upErr.Body)
	}
}

func TestSendEmptyReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server.URL)

	if _, err := client.Send(context.Background(), "s", "hi"); !errors.Is(err, ErrEmptyReply) {
		t.Fatalf("expected ErrEmptyReply, got %v", err)
	}
}

func TestSendNetworkError(t *testing.T) {
	// Point at a server that is already closed.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL)

	_, err := client.Send(context.Background(), "s", "hi")
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestSendRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":"ok"}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "t", Options{
		Timeout:           5 * time.Second,
		RetryCount:        3,
		RequestsPerSecond: 1000,
	})
	client.httpClient.SetRetryWaitTime(time.Millisecond)

	out, err := client.Send(context.Background(), "s", "hi")
	if err != nil {
		t.Fatalf("Send failed after retries: %v", err)
	}
	if out != "ok" {
		t.Errorf("output = %q, want ok", out)
	}
	if calls.Load() != 3 {
		t.Errorf("server called %d times, want 3", calls.Load())
	}
}
