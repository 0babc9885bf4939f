package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	xerrors "leaddist-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rowErrors []string

func (r rowErrors) Error() string      { return "rows invalid" }
func (r rowErrors) Messages() []string { return r }

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", xerrors.ErrInvalidInput), http.StatusUnprocessableEntity},
		{xerrors.ErrUnsupportedFileType, http.StatusBadRequest},
		{xerrors.ErrMalformedFile, http.StatusBadRequest},
		{xerrors.ErrPrecondition, http.StatusBadRequest},
		{xerrors.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{xerrors.ErrNotFound, http.StatusNotFound},
		{xerrors.ErrDuplicateEntry, http.StatusConflict},
		{xerrors.ErrUnauthorized, http.StatusUnauthorized},
		{xerrors.ErrRateLimited, http.StatusTooManyRequests},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	FromError(c, "File validation failed", rowErrors{"Row 2: Phone is required"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, []string{"Row 2: Phone is required"}, body.Details)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	FromError(c, "failed", errors.New("pq: password authentication failed"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
}
