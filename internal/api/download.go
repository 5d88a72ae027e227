package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/safetycheck/fieldsync/internal/snapshot"
)

// FetchSnapshot downloads the caller's assigned work orders, templates,
// and profile for offline use. Unlike the action calls this is a plain
// fetch, so it returns an error rather than an Outcome.
func (c *HTTPClient) FetchSnapshot(ctx context.Context) (snapshot.Snapshot, error) {
	var snap snapshot.Snapshot

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/offline/snapshot", nil)
	if err != nil {
		return snap, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return snap, fmt.Errorf("snapshot download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return snap, fmt.Errorf("snapshot download failed: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return snap, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}
