// internal/pkg/errors/error.go
package xerrors

import (
	"errors"
	"fmt"
)

// Application-wide sentinel errors. Typed errors elsewhere match these via errors.Is.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized access")
	ErrInvalidInput        = errors.New("invalid input")
	ErrConflict            = errors.New("conflict")
	ErrDuplicateEntry      = errors.New("duplicate entry")
	ErrRateLimited         = errors.New("too many requests")
	ErrPrecondition        = errors.New("precondition failed")
	ErrUnsupportedFileType = errors.New("unsupported file type: only .csv, .xlsx and .xls are allowed")
	ErrFileTooLarge        = errors.New("file exceeds the maximum allowed size")
	ErrMalformedFile       = errors.New("file could not be parsed")
)

// Wrap adds context to an error.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
