package boltbot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", WithHTTPClient(srv.Client()))
}

func TestCommand_SendsInvocation(t *testing.T) {
	var got CommandRequest
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/commands" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"request_id":"r1","status":"ok","content":"listing","page":2,"pages":3}`))
	})

	resp, err := c.Command(context.Background(), "alice", "!godbolt languages 2")
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if got.User != "alice" || got.Text != "!godbolt languages 2" {
		t.Errorf("unexpected request body: %+v", got)
	}
	if !resp.OK() || resp.Content != "listing" || resp.Page != 2 || resp.Pages != 3 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestCommand_CooldownIsNotAnError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"request_id":"r2","status":"cooldown","content":"Slow down! Try again in 1.2s."}`))
	})

	resp, err := c.Command(context.Background(), "alice", "languages")
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if resp.Status != StatusCooldown || resp.OK() {
		t.Errorf("expected cooldown status, got %+v", resp)
	}
}

func TestCommand_BadRequest_ReturnsAPIError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"text is required"}`))
	})

	_, err := c.Command(context.Background(), "alice", "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "text is required" {
		t.Errorf("unexpected error: %+v", apiErr)
	}
}

func TestHealth_NonJSONError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	_, err := c.Health(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Message != "Service Unavailable" {
		t.Errorf("expected status text fallback, got %q", apiErr.Message)
	}
}

func TestHealth_OK(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"ok"}`))
	})

	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected ok, got %q", resp.Status)
	}
}

func TestHealth_SendsNoBody(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "" {
			t.Errorf("expected no Content-Type on GET, got %q", ct)
		}
		if r.ContentLength > 0 {
			t.Errorf("expected empty body, got %d bytes", r.ContentLength)
		}
		w.Write([]byte(`{"status":"ok"}`))
	})

	if _, err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
}

func TestCommand_UnexpectedSuccessStatus_ReturnsAPIError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"status":"ok","content":"queued"}`))
	})

	_, err := c.Command(context.Background(), "alice", "languages")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusAccepted {
		t.Errorf("unexpected status: %d", apiErr.StatusCode)
	}
}

func TestCommand_TransportErrorNamesCall(t *testing.T) {
	c := New("http://127.0.0.1:1")

	_, err := c.Command(context.Background(), "alice", "languages")
	if err == nil {
		t.Fatal("expected an error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("transport failure must not be an APIError: %v", err)
	}
	if !strings.Contains(err.Error(), "POST /commands") {
		t.Errorf("expected the call in the error, got %v", err)
	}
}
