// internal/pkg/response/errors.go
package response

import (
	"errors"
	"net/http"

	xerrors "leaddist-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

// detailed errors carry a list of individual problems, shown as details.
type detailed interface {
	Messages() []string
}

// StatusFor maps an application error onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, xerrors.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, xerrors.ErrUnsupportedFileType),
		errors.Is(err, xerrors.ErrMalformedFile),
		errors.Is(err, xerrors.ErrPrecondition),
		errors.Is(err, xerrors.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, xerrors.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, xerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, xerrors.ErrDuplicateEntry):
		return http.StatusConflict
	case errors.Is(err, xerrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, xerrors.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes err with the status StatusFor picks. Internal errors are
// not echoed to the client.
func FromError(c *gin.Context, message string, err error) {
	var d detailed
	if errors.As(err, &d) {
		ValidationFailed(c, message, d.Messages())
		return
	}

	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		Error(c, status, message, errors.New("internal server error"))
		return
	}
	Error(c, status, message, err)
}
