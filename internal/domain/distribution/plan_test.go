package distribution

import (
	"errors"
	"strings"
	"testing"
	"time"

	xerrors "leaddist-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_Properties(t *testing.T) {
	for total := 0; total <= 250; total++ {
		shares := Split(total, 5)
		require.Len(t, shares, 5)

		sum, maxShare, minShare := 0, shares[0], shares[0]
		extra := 0
		for _, s := range shares {
			sum += s
			if s > maxShare {
				maxShare = s
			}
			if s < minShare {
				minShare = s
			}
			if s == total/5+1 {
				extra++
			}
		}
		assert.Equal(t, total, sum, "total=%d", total)
		assert.LessOrEqual(t, maxShare-minShare, 1, "total=%d", total)
		assert.Equal(t, total%5, extra, "total=%d", total)

		for i := 1; i < len(shares); i++ {
			assert.GreaterOrEqual(t, shares[i-1], shares[i], "extras go to the front, total=%d", total)
		}
	}
}

func TestSplit_Examples(t *testing.T) {
	assert.Equal(t, []int{5, 5, 5, 4, 4}, Split(23, 5))
	assert.Equal(t, []int{1, 1, 1, 0, 0}, Split(3, 5))
	assert.Equal(t, []int{0, 0, 0, 0, 0}, Split(0, 5))
	assert.Equal(t, []int{20, 20, 20, 20, 20}, Split(100, 5))
	assert.Nil(t, Split(10, 0))
}

func TestNewBatchID(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewBatchID(now)
		assert.True(t, strings.HasPrefix(id, "batch-"))
		assert.True(t, IsBatchID(id), id)
		_, dup := seen[id]
		assert.False(t, dup, "duplicate batch id %s", id)
		seen[id] = struct{}{}
	}
	assert.False(t, IsBatchID("batch-nope"))
	assert.False(t, IsBatchID("01J0000000000000000000000"))
}

func TestNewBatchID_TimeOrdered(t *testing.T) {
	a := NewBatchID(time.Unix(1000, 0))
	b := NewBatchID(time.Unix(2000, 0))
	assert.Less(t, a, b)
}

func TestInsufficientAgentsError(t *testing.T) {
	for _, found := range []int{0, 1, 4} {
		err := error(&InsufficientAgentsError{Found: found})
		assert.True(t, errors.Is(err, xerrors.ErrPrecondition))

		got, ok := AsInsufficientAgents(err)
		require.True(t, ok)
		assert.Equal(t, 5-found, got.Missing())
		assert.Contains(t, err.Error(), "Please add "+string(rune('0'+5-found))+" more agent(s).")
	}
}

func TestErrEmptyBatch(t *testing.T) {
	assert.True(t, errors.Is(ErrEmptyBatch, xerrors.ErrInvalidInput))
}
