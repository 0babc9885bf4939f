// internal/domain/record/entity.go
package record

import (
	"time"
)

// Status is the workflow state of a distributed record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Statuses lists every workflow state in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusFailed}

// Valid reports whether s is a known workflow state.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// MaxNotesLength bounds the free-text notes on a record.
const MaxNotesLength = 1000

// Record is one uploaded row assigned to exactly one agent.
type Record struct {
	ID              int64      `json:"id" db:"id"`
	BatchID         string     `json:"batch_id" db:"batch_id"`
	AssignedAgentID int64      `json:"assigned_agent_id" db:"assigned_agent_id"`
	RowIndex        int        `json:"row_index" db:"row_index"`
	Data            FieldMap   `json:"data" db:"data"`
	Status          Status     `json:"status" db:"status"`
	UploadedBy      int64      `json:"uploaded_by" db:"uploaded_by"`
	UploadedAt      time.Time  `json:"uploaded_at" db:"uploaded_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Notes           string     `json:"notes" db:"notes"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`

	// Populated by joined reads only.
	AgentName  string `json:"agent_name,omitempty" db:"agent_name"`
	AgentEmail string `json:"agent_email,omitempty" db:"agent_email"`
}

// ApplyStatus moves the record to status. Any state may follow any other;
// CompletedAt is stamped on the first move into completed and never cleared.
func (r *Record) ApplyStatus(status Status, notes *string, now time.Time) {
	r.Status = status
	if status == StatusCompleted && r.CompletedAt == nil {
		t := now
		r.CompletedAt = &t
	}
	if notes != nil {
		r.Notes = *notes
	}
	r.UpdatedAt = now
}
