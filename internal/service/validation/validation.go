// internal/service/validation/validation.go
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"leaddist-service/internal/domain/record"
	xerrors "leaddist-service/internal/pkg/errors"
)

// EmptyFileMessage is reported when there is nothing to validate.
const EmptyFileMessage = "file is empty or contains no valid data"

// Result is the outcome of validating an upload.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func invalid(errs ...string) Result {
	return Result{Valid: false, Errors: errs}
}

func fromErrors(errs []string) Result {
	if len(errs) == 0 {
		return Result{Valid: true, Errors: []string{}}
	}
	return invalid(errs...)
}

// Strategy validates a whole upload. Implementations are pure.
type Strategy interface {
	Validate(rows []record.FieldMap) Result
}

// Error carries every validation problem of a rejected upload.
type Error struct {
	Details []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("validation failed with %d error(s)", len(e.Details))
}

// Messages lists the individual problems.
func (e *Error) Messages() []string {
	return e.Details
}

func (e *Error) Is(target error) bool {
	return target == xerrors.ErrInvalidInput
}

// Err converts a failed result into an *Error, or nil when valid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &Error{Details: r.Errors}
}

// ForRequiredFields returns the fixed lead schema when fields is empty and
// the caller-driven required-fields check otherwise.
func ForRequiredFields(fields []string) Strategy {
	if len(fields) == 0 {
		return FixedSchema{}
	}
	return RequiredFields{Fields: fields}
}

var nonDigits = regexp.MustCompile(`\D`)

func digitsOnly(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

func rowNumber(index int) int {
	// index 0 is the first data row, which sits on line 2 under the header
	return index + 2
}

func isBlank(v record.Value) bool {
	return strings.TrimSpace(v.Text()) == "" || v.IsNull()
}
