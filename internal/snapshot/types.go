// Package snapshot holds the client-local copy of server entities used for
// offline reads and optimistic writes.
//
// The snapshot is a cache, never a source of truth: it is downloaded as of a
// sync point and mutated locally while disconnected. Reconciliation happens
// by re-downloading after the action queue drains.
package snapshot

import "time"

// WorkOrder is a denormalized copy of a server-side work order.
type WorkOrder struct {
	WorkOrderID string       `json:"work_order_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	CreatedAt   string       `json:"created_at"`
	DueDate     string       `json:"due_date,omitempty"`
	Status      string       `json:"status"` // pending, in-progress, completed, overdue
	AssignedTo  string       `json:"assigned_to"`
	Location    string       `json:"location,omitempty"`
	Priority    string       `json:"priority"` // low, medium, high, critical
	Inspections []Inspection `json:"inspections"`
}

// Inspection is a single inspection slot within a work order.
type Inspection struct {
	InspectionID        string            `json:"inspection_id"`
	TemplateID          string            `json:"template_id"`
	TemplateName        string            `json:"template_name"`
	TemplateDescription string            `json:"template_description"`
	Status              string            `json:"status"` // not-started, in-progress, completed, pending-review, approved, rejected
	Required            bool              `json:"required"`
	CompletedAt         string            `json:"completed_at,omitempty"`
	ReviewedAt          string            `json:"reviewed_at,omitempty"`
	ReviewedBy          string            `json:"reviewed_by,omitempty"`
	Result              *InspectionResult `json:"result,omitempty"`
	Order               int               `json:"order"`
}

// InspectionResult is the completed-form payload produced by the form UI.
type InspectionResult struct {
	TemplateID  string         `json:"template_id"`
	CompletedAt string         `json:"completed_at"`
	Inspector   string         `json:"inspector"`
	EquipmentID string         `json:"equipment_id,omitempty"`
	TotalScore  float64        `json:"total_score"`
	MaxScore    float64        `json:"max_score"`
	Passed      bool           `json:"passed"`
	Data        map[string]any `json:"data"`
}

// Template is a denormalized inspection template. The engine never inspects
// template internals; it carries them for offline form rendering.
type Template struct {
	TemplateID  string         `json:"template_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	HeaderItems []map[string]any `json:"header_items,omitempty"`
	Items       []map[string]any `json:"items,omitempty"`
}

// User is the signed-in field worker as of the last download.
type User struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Snapshot is the full offline data set.
type Snapshot struct {
	WorkOrders []WorkOrder `json:"workOrders"`
	Templates  []Template  `json:"templates"`
	User       *User       `json:"user,omitempty"`
	LastSync   time.Time   `json:"lastSync"`
}

// InspectionStatusCompleted is the status written by an optimistic
// completion.
const InspectionStatusCompleted = "completed"
