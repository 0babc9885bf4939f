// internal/domain/agent/entity.go
package agent

import (
	"fmt"
	"time"

	xerrors "leaddist-service/internal/pkg/errors"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// RequiredActive is the exact number of agents a batch is split across.
const RequiredActive = 5

// Agent is a sales agent that receives uploaded records.
type Agent struct {
	ID                   int64     `json:"id" db:"id"`
	Name                 string    `json:"name" db:"name"`
	Email                string    `json:"email" db:"email"`
	Phone                *string   `json:"phone,omitempty" db:"phone"`
	Status               Status    `json:"status" db:"status"`
	AssignedRecordsCount int64     `json:"assigned_records_count" db:"assigned_records_count"`
	CreatedBy            int64     `json:"created_by" db:"created_by"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

func (a *Agent) IsActive() bool { return a.Status == StatusActive }

// ActiveCount is the readiness signal shown before an upload.
type ActiveCount struct {
	Count   int64  `json:"count"`
	Ready   bool   `json:"ready"`
	Message string `json:"message"`
}

func NewActiveCount(count int64) ActiveCount {
	if count >= RequiredActive {
		return ActiveCount{Count: count, Ready: true, Message: "Ready for distribution"}
	}
	return ActiveCount{
		Count:   count,
		Message: fmt.Sprintf("Need %d more agent(s)", RequiredActive-count),
	}
}

// CountCorrection records one counter repaired by a recount.
type CountCorrection struct {
	AgentID  int64  `json:"agent_id" db:"id"`
	Name     string `json:"name" db:"name"`
	Previous int64  `json:"previous" db:"previous"`
	Actual   int64  `json:"actual" db:"actual"`
}

// HasRecordsError is returned when removing an agent that still owns records.
type HasRecordsError struct {
	AgentID  int64
	Assigned int64
}

func (e *HasRecordsError) Error() string {
	return fmt.Sprintf("Cannot delete agent with %d assigned records. Please reassign or complete records first.", e.Assigned)
}

func (e *HasRecordsError) Is(target error) bool {
	return target == xerrors.ErrConflict
}
