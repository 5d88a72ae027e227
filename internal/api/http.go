package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds each remote call. Timeout is the only termination
// mechanism for a hung call, so it must not be disabled.
const DefaultTimeout = 15 * time.Second

// HTTPClient implements Client against the inspections REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates a client for the API at baseURL.
// A timeout of 0 means DefaultTimeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// CompleteInspection implements Client.CompleteInspection.
func (c *HTTPClient) CompleteInspection(ctx context.Context, payload json.RawMessage) Outcome {
	return c.post(ctx, "/api/inspections/complete", payload)
}

// UpdateInspection implements Client.UpdateInspection.
func (c *HTTPClient) UpdateInspection(ctx context.Context, payload json.RawMessage) Outcome {
	return c.post(ctx, "/api/inspections/update", payload)
}

// UploadPhoto implements Client.UploadPhoto.
func (c *HTTPClient) UploadPhoto(ctx context.Context, payload json.RawMessage) Outcome {
	return c.post(ctx, "/api/media/photos", payload)
}

// UploadSignature implements Client.UploadSignature.
func (c *HTTPClient) UploadSignature(ctx context.Context, payload json.RawMessage) Outcome {
	return c.post(ctx, "/api/media/signatures", payload)
}

// Ping checks server reachability. Used by the connectivity monitor's
// heartbeat; any response, even an error status, proves the network path.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/api/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

// post sends payload and classifies the response per the retry taxonomy:
// transport errors and 5xx are retryable, 4xx is a permanent rejection.
func (c *HTTPClient) post(ctx context.Context, path string, payload json.RawMessage) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Retryable(fmt.Errorf("%s: %w", path, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return OK()
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return Permanent(fmt.Errorf("%s: server rejected action: %s", path, readError(resp.Body, resp.Status)))
	default:
		return Retryable(fmt.Errorf("%s: server error: %s", path, resp.Status))
	}
}

// readError pulls a short error message from the response body, falling
// back to the HTTP status line.
func readError(r io.Reader, fallback string) string {
	raw, err := io.ReadAll(io.LimitReader(r, 1024))
	if err != nil || len(raw) == 0 {
		return fallback
	}

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return fallback
}
