package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func serve(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, time.Second)
}

// TestHTTPClient_Success tests that a 2xx maps to DispositionOK
func TestHTTPClient_Success(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/inspections/complete" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		w.WriteHeader(http.StatusCreated)
	})

	out := c.CompleteInspection(context.Background(), json.RawMessage(`{"workOrderId":"WO-1"}`))
	if out.Disposition != DispositionOK {
		t.Errorf("disposition = %v, want OK (err: %v)", out.Disposition, out.Err)
	}
}

// TestHTTPClient_ServerError tests that a 5xx is retryable
func TestHTTPClient_ServerError(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	out := c.UpdateInspection(context.Background(), json.RawMessage(`{}`))
	if out.Disposition != DispositionRetryable {
		t.Errorf("disposition = %v, want retryable", out.Disposition)
	}
	if out.Err == nil {
		t.Error("retryable outcome missing error")
	}
}

// TestHTTPClient_Rejection tests that a 4xx is permanent and carries the
// server's message
func TestHTTPClient_Rejection(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"template_id is required"}`))
	})

	out := c.UploadPhoto(context.Background(), json.RawMessage(`{}`))
	if out.Disposition != DispositionPermanent {
		t.Errorf("disposition = %v, want permanent", out.Disposition)
	}
	if out.Err == nil || out.Err.Error() == "" {
		t.Fatal("permanent outcome missing error")
	}
}

// TestHTTPClient_Unreachable tests that a transport failure is retryable
func TestHTTPClient_Unreachable(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", 200*time.Millisecond)

	out := c.UploadSignature(context.Background(), json.RawMessage(`{}`))
	if out.Disposition != DispositionRetryable {
		t.Errorf("disposition = %v, want retryable", out.Disposition)
	}
}

// TestHTTPClient_Ping tests the heartbeat probe
func TestHTTPClient_Ping(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping() failed: %v", err)
	}

	down := NewHTTPClient("http://127.0.0.1:1", 200*time.Millisecond)
	if err := down.Ping(context.Background()); err == nil {
		t.Error("Ping() against unreachable host succeeded")
	}
}
