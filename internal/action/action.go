// Package action defines the pending-action queue: the ordered set of
// offline mutations awaiting confirmation from the server.
package action

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/safetycheck/fieldsync/internal/snapshot"
)

// Type identifies the remote call a queued action maps to.
type Type string

const (
	TypeInspectionComplete Type = "inspection_complete"
	TypeInspectionUpdate   Type = "inspection_update"
	TypePhotoUpload        Type = "photo_upload"
	TypeSignatureUpload    Type = "signature_upload"
)

// Valid reports whether t is a known action type.
func (t Type) Valid() bool {
	switch t {
	case TypeInspectionComplete, TypeInspectionUpdate, TypePhotoUpload, TypeSignatureUpload:
		return true
	}
	return false
}

// Status is the retry state of a queued action.
//
// Transitions are monotonic (pending → syncing → completed/failed) except
// the operator-triggered failed → pending reset.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSyncing   Status = "syncing"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// DefaultMaxRetries is the retry budget given to new actions.
const DefaultMaxRetries = 3

// Action is a single queued mutation. Actions are independently retryable
// and identified by ID for idempotent delivery.
type Action struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	Timestamp  time.Time       `json:"timestamp"`
	Payload    json.RawMessage `json:"payload"`
	RetryCount int             `json:"retryCount"`
	MaxRetries int             `json:"maxRetries"`
	Status     Status          `json:"status"`
}

// New creates a pending action with a fresh ID and the default retry
// budget. The payload is serialized once at enqueue time so later retries
// always send identical bytes.
func New(typ Type, payload any) (*Action, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("unknown action type: %s", typ)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", typ, err)
	}

	return &Action{
		ID:         fmt.Sprintf("%s_%s", typ, uuid.NewString()),
		Type:       typ,
		Timestamp:  time.Now().UTC(),
		Payload:    raw,
		RetryCount: 0,
		MaxRetries: DefaultMaxRetries,
		Status:     StatusPending,
	}, nil
}

// PhotoRef describes a captured photo. Content is referenced by local path
// rather than embedded, so the queue blob stays small.
type PhotoRef struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	MimeType  string `json:"type"`
	LocalPath string `json:"local_path,omitempty"`
}

// SignatureRef describes a captured signature stroke image.
type SignatureRef struct {
	Name      string `json:"name"`
	SignedBy  string `json:"signed_by,omitempty"`
	LocalPath string `json:"local_path,omitempty"`
}

// CompletionPayload is the payload of an inspection_complete action.
type CompletionPayload struct {
	WorkOrderID  string                    `json:"workOrderId"`
	InspectionID string                    `json:"inspectionId"`
	Result       snapshot.InspectionResult `json:"result"`
	CompletedAt  string                    `json:"completedAt"`
	Photos       []PhotoRef                `json:"photos"`
	Signatures   []SignatureRef            `json:"signatures"`
}

// UpdatePayload is the payload of an inspection_update action: a partial
// update to an in-progress inspection.
type UpdatePayload struct {
	WorkOrderID  string         `json:"workOrderId"`
	InspectionID string         `json:"inspectionId"`
	Fields       map[string]any `json:"fields"`
}

// MediaPayload is the payload of photo_upload and signature_upload actions.
type MediaPayload struct {
	WorkOrderID  string `json:"workOrderId"`
	InspectionID string `json:"inspectionId"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	MimeType     string `json:"type"`
	LocalPath    string `json:"local_path,omitempty"`
}
