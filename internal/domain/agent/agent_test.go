package agent

import (
	"errors"
	"testing"

	xerrors "leaddist-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestNewActiveCount(t *testing.T) {
	tests := []struct {
		count   int64
		ready   bool
		message string
	}{
		{0, false, "Need 5 more agent(s)"},
		{1, false, "Need 4 more agent(s)"},
		{4, false, "Need 1 more agent(s)"},
		{5, true, "Ready for distribution"},
		{7, true, "Ready for distribution"},
	}
	for _, tt := range tests {
		got := NewActiveCount(tt.count)
		assert.Equal(t, tt.count, got.Count)
		assert.Equal(t, tt.ready, got.Ready)
		assert.Equal(t, tt.message, got.Message)
	}
}

func TestHasRecordsError(t *testing.T) {
	err := error(&HasRecordsError{AgentID: 3, Assigned: 12})
	assert.EqualError(t, err, "Cannot delete agent with 12 assigned records. Please reassign or complete records first.")
	assert.True(t, errors.Is(err, xerrors.ErrConflict))
}

func TestCreateAgentRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateAgentRequest
		wantErr bool
	}{
		{"valid", CreateAgentRequest{Name: "Jane Doe", Email: "jane@example.com", Phone: "0712345678"}, false},
		{"phone optional", CreateAgentRequest{Name: "Jo", Email: "jo@example.com"}, false},
		{"short name", CreateAgentRequest{Name: "J", Email: "j@example.com"}, true},
		{"bad email", CreateAgentRequest{Name: "Jane", Email: "jane"}, true},
		{"bad phone", CreateAgentRequest{Name: "Jane", Email: "jane@example.com", Phone: "12-34"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateAgentRequest_Normalize(t *testing.T) {
	req := CreateAgentRequest{Name: "  Jane ", Email: " Jane@Example.COM ", Phone: " 0712345678 "}
	req.Normalize()
	assert.Equal(t, "Jane", req.Name)
	assert.Equal(t, "jane@example.com", req.Email)
	assert.Equal(t, "0712345678", req.Phone)
}

func TestUpdateAgentRequest_Validate(t *testing.T) {
	bad := Status("retired")
	assert.Error(t, UpdateAgentRequest{Status: &bad}.Validate())

	inactive := StatusInactive
	assert.NoError(t, UpdateAgentRequest{Status: &inactive}.Validate())
	assert.NoError(t, UpdateAgentRequest{}.Validate())
}
