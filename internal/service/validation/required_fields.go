// internal/service/validation/required_fields.go
package validation

import (
	"fmt"
	"regexp"

	"leaddist-service/internal/domain/record"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var phonePattern = regexp.MustCompile(`^[0-9]{10,15}$`)

// RequiredFields checks that each listed column is filled on every row and
// that any lower-case email or phone column is well formed.
type RequiredFields struct {
	Fields []string
}

func (s RequiredFields) Validate(rows []record.FieldMap) Result {
	if len(rows) == 0 {
		return invalid(EmptyFileMessage)
	}

	var errs []string
	for i, row := range rows {
		n := rowNumber(i)

		for _, field := range s.Fields {
			if isBlank(row.Get(field)) {
				errs = append(errs, fmt.Sprintf("Row %d: Missing required field '%s'", n, field))
			}
		}

		if email := row.Get("email"); !isBlank(email) && !emailPattern.MatchString(email.Text()) {
			errs = append(errs, fmt.Sprintf("Row %d: Invalid email format", n))
		}

		if phone := row.Get("phone"); !isBlank(phone) && !phonePattern.MatchString(digitsOnly(phone.Text())) {
			errs = append(errs, fmt.Sprintf("Row %d: Invalid phone format (use 10-15 digits)", n))
		}
	}
	return fromErrors(errs)
}
