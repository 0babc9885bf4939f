// internal/domain/distribution/plan.go
package distribution

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"leaddist-service/internal/domain/agent"
	xerrors "leaddist-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
)

// ErrEmptyBatch is returned when asked to distribute zero rows.
var ErrEmptyBatch = fmt.Errorf("%w: nothing to distribute", xerrors.ErrInvalidInput)

// Allocation is one agent's share of a batch.
type Allocation struct {
	AgentID       int64  `json:"agentId"`
	AgentName     string `json:"agentName"`
	AgentEmail    string `json:"agentEmail"`
	AssignedCount int    `json:"assignedCount"`
}

// Plan is the receipt of a committed distribution.
type Plan struct {
	BatchID      string       `json:"batchId"`
	TotalRecords int          `json:"totalRecords"`
	Distribution []Allocation `json:"distribution"`
}

// Split divides total into n near-equal shares; the first total%n shares get one extra.
func Split(total, n int) []int {
	if n <= 0 {
		return nil
	}
	shares := make([]int, n)
	if total <= 0 {
		return shares
	}
	base, rem := total/n, total%n
	for i := range shares {
		shares[i] = base
		if i < rem {
			shares[i]++
		}
	}
	return shares
}

const batchPrefix = "batch-"

// NewBatchID returns a time-ordered, collision-resistant batch key.
func NewBatchID(now time.Time) string {
	id := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy())
	return batchPrefix + strings.ToLower(id.String())
}

// IsBatchID reports whether s looks like a key produced by NewBatchID.
func IsBatchID(s string) bool {
	if !strings.HasPrefix(s, batchPrefix) {
		return false
	}
	_, err := ulid.ParseStrict(strings.ToUpper(strings.TrimPrefix(s, batchPrefix)))
	return err == nil
}

// InsufficientAgentsError is returned when fewer than agent.RequiredActive agents are active.
type InsufficientAgentsError struct {
	Found int
}

// Missing is how many more active agents are needed.
func (e *InsufficientAgentsError) Missing() int {
	return agent.RequiredActive - e.Found
}

func (e *InsufficientAgentsError) Error() string {
	return fmt.Sprintf(
		"Need exactly %d active agents for distribution. Currently %d active agent(s) found. Please add %d more agent(s).",
		agent.RequiredActive, e.Found, e.Missing(),
	)
}

func (e *InsufficientAgentsError) Is(target error) bool {
	return target == xerrors.ErrPrecondition
}

// AsInsufficientAgents unwraps err into an InsufficientAgentsError.
func AsInsufficientAgents(err error) (*InsufficientAgentsError, bool) {
	var target *InsufficientAgentsError
	ok := errors.As(err, &target)
	return target, ok
}
