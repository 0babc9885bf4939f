// internal/service/validation/fixed_schema.go
package validation

import (
	"fmt"
	"strings"

	"leaddist-service/internal/domain/record"
)

const (
	ColumnFirstName = "FirstName"
	ColumnPhone     = "Phone"
	ColumnNotes     = "Notes"
)

// LeadColumns are the columns every lead upload must carry, in reporting order.
var LeadColumns = []string{ColumnFirstName, ColumnPhone, ColumnNotes}

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

// FixedSchema checks uploads against the FirstName, Phone, Notes lead layout.
type FixedSchema struct{}

func (FixedSchema) Validate(rows []record.FieldMap) Result {
	if len(rows) == 0 {
		return invalid(EmptyFileMessage)
	}

	if missing := missingColumns(rows[0]); len(missing) > 0 {
		return invalid(fmt.Sprintf(
			"Missing required columns: %s. Expected columns: %s",
			strings.Join(missing, ", "), strings.Join(LeadColumns, ", "),
		))
	}

	var errs []string
	for i, row := range rows {
		errs = append(errs, checkLeadRow(rowNumber(i), row)...)
	}
	return fromErrors(errs)
}

func missingColumns(first record.FieldMap) []string {
	var missing []string
	for _, col := range LeadColumns {
		if !first.Has(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

func checkLeadRow(n int, row record.FieldMap) []string {
	var errs []string

	// numeric zero is treated as an absent name
	first := row.Get(ColumnFirstName)
	if isBlank(first) || (first.IsNumber() && first.Float() == 0) {
		errs = append(errs, fmt.Sprintf("Row %d: FirstName is required", n))
	}

	// numeric zero is a present phone; it then fails the length rule
	phone := row.Get(ColumnPhone)
	switch {
	case phone.IsNull() || (phone.IsString() && phone.Text() == ""):
		errs = append(errs, fmt.Sprintf("Row %d: Phone is required", n))
	default:
		digits := digitsOnly(phone.Text())
		if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
			errs = append(errs, fmt.Sprintf("Row %d: Phone must be %d-%d digits", n, minPhoneDigits, maxPhoneDigits))
		}
	}

	if row.Get(ColumnNotes).IsNull() {
		errs = append(errs, fmt.Sprintf("Row %d: Notes is required", n))
	}

	return errs
}
