// internal/domain/agent/dto.go
package agent

import (
	"regexp"
	"strings"

	"leaddist-service/internal/pkg/pagination"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10,15}$`)

type CreateAgentRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (r *CreateAgentRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
}

func (r CreateAgentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(2, 100)),
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Phone, validation.Match(phonePattern).Error("phone must be 10-15 digits")),
	)
}

type UpdateAgentRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Phone  *string `json:"phone"`
	Status *Status `json:"status"`
}

func (r *UpdateAgentRequest) Normalize() {
	if r.Name != nil {
		v := strings.TrimSpace(*r.Name)
		r.Name = &v
	}
	if r.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &v
	}
	if r.Phone != nil {
		v := strings.TrimSpace(*r.Phone)
		r.Phone = &v
	}
}

func (r UpdateAgentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.RuneLength(2, 100)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.EmailFormat),
		validation.Field(&r.Phone, validation.Match(phonePattern).Error("phone must be 10-15 digits")),
		validation.Field(&r.Status, validation.By(func(value interface{}) error {
			if s, _ := value.(*Status); s != nil && !s.Valid() {
				return validation.NewError("validation_status", "status must be active or inactive")
			}
			return nil
		})),
	)
}

type ListFilters struct {
	Status Status `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

type ListResponse struct {
	Agents     []Agent               `json:"agents"`
	Pagination pagination.Pagination `json:"pagination"`
}
