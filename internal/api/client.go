// Package api is the boundary to the inspections server.
//
// Every queued action type maps to one call. Calls return a typed Outcome
// instead of a bare error so the scheduler can tell failures that retrying
// can fix (timeouts, 5xx, dropped connections) from ones it cannot (server
// rejected the payload).
package api

import (
	"context"
	"encoding/json"
)

// Disposition classifies a remote call result.
type Disposition int

const (
	// DispositionOK means the server accepted the action.
	DispositionOK Disposition = iota

	// DispositionRetryable means the attempt failed in a way a later
	// retry may fix. Consumes retry budget.
	DispositionRetryable

	// DispositionPermanent means the server rejected the payload.
	// Retrying wastes cycles; the action should fail immediately.
	DispositionPermanent
)

// Outcome is the result of one remote call.
type Outcome struct {
	Disposition Disposition
	Err         error
}

// OK returns a successful outcome.
func OK() Outcome {
	return Outcome{Disposition: DispositionOK}
}

// Retryable wraps err as a transient failure.
func Retryable(err error) Outcome {
	return Outcome{Disposition: DispositionRetryable, Err: err}
}

// Permanent wraps err as a non-retryable rejection.
func Permanent(err error) Outcome {
	return Outcome{Disposition: DispositionPermanent, Err: err}
}

// Client is the remote API surface the sync scheduler drains actions
// against. Payloads are passed as the exact bytes captured at enqueue time.
//
// Implementations must enforce their own network timeout; the scheduler
// never cancels an in-flight call.
type Client interface {
	// CompleteInspection submits a completed inspection result.
	CompleteInspection(ctx context.Context, payload json.RawMessage) Outcome

	// UpdateInspection applies a partial update to an in-progress
	// inspection.
	UpdateInspection(ctx context.Context, payload json.RawMessage) Outcome

	// UploadPhoto submits a photo attachment.
	UploadPhoto(ctx context.Context, payload json.RawMessage) Outcome

	// UploadSignature submits a signature attachment.
	UploadSignature(ctx context.Context, payload json.RawMessage) Outcome
}
