// internal/domain/record/dto.go
package record

import (
	"strings"

	"leaddist-service/internal/pkg/pagination"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type UpdateStatusRequest struct {
	Status Status  `json:"status"`
	Notes  *string `json:"notes"`
}

// Normalize trims the notes in place.
func (r *UpdateStatusRequest) Normalize() {
	if r.Notes != nil {
		trimmed := strings.TrimSpace(*r.Notes)
		r.Notes = &trimmed
	}
}

func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status,
			validation.Required.Error("status is required"),
			validation.By(func(value interface{}) error {
				if s, _ := value.(Status); !s.Valid() {
					return validation.NewError("validation_status", "status must be one of pending, in_progress, completed, failed")
				}
				return nil
			}),
		),
		validation.Field(&r.Notes, validation.By(func(value interface{}) error {
			if n, _ := value.(*string); n != nil && len([]rune(*n)) > MaxNotesLength {
				return validation.NewError("validation_notes_length", "notes cannot exceed 1000 characters")
			}
			return nil
		})),
	)
}

type ListFilters struct {
	AgentID *int64 `form:"agent_id"`
	Status  Status `form:"status"`
	BatchID string `form:"batch_id"`
	Page    int    `form:"page"`
	Limit   int    `form:"limit"`
}

type ListResponse struct {
	Records    []Record              `json:"records"`
	Pagination pagination.Pagination `json:"pagination"`
}

type BatchResponse struct {
	BatchID string   `json:"batch_id"`
	Count   int      `json:"count"`
	Records []Record `json:"records"`
}

type AgentRecordsResponse struct {
	AgentID int64    `json:"agent_id"`
	Count   int      `json:"count"`
	Records []Record `json:"records"`
}
