package record

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"leaddist-service/internal/domain/agent"
	"leaddist-service/internal/domain/record"
	xerrors "leaddist-service/internal/pkg/errors"
	distsvc "leaddist-service/internal/service/distribution"
	"leaddist-service/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	mem     *testutil.Memory
	svc     *RecordService
	agents  []int64
	batchID string
}

func setup(t *testing.T, n int) *fixture {
	t.Helper()
	mem := testutil.NewMemory()
	var ids []int64
	for i := 1; i <= 5; i++ {
		ids = append(ids, mem.SeedAgent(fmt.Sprintf("Agent %d", i), fmt.Sprintf("a%d@example.com", i), agent.StatusActive, 0))
	}

	rows := make([]record.FieldMap, n)
	for i := range rows {
		m := record.NewFieldMap(3)
		m.Set("FirstName", record.String(fmt.Sprintf("Lead %d", i)))
		m.Set("Phone", record.String("0712345678"))
		m.Set("Notes", record.String(""))
		rows[i] = m
	}

	plan, err := distsvc.NewEngine(mem, &testutil.MemLock{}, zap.NewNop()).Distribute(context.Background(), rows, 1)
	require.NoError(t, err)

	return &fixture{
		mem:     mem,
		svc:     NewRecordService(mem.Records(), zap.NewNop()),
		agents:  ids,
		batchID: plan.BatchID,
	}
}

func TestGetStats_AfterDistribution(t *testing.T) {
	f := setup(t, 23)

	stats, err := f.svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(23), stats.TotalRecords)
	require.Len(t, stats.ByAgent, 5)

	want := []int64{5, 5, 5, 4, 4}
	for i, s := range stats.ByAgent {
		assert.Equal(t, f.agents[i], s.AgentID)
		assert.Equal(t, want[i], s.TotalAssigned)
		assert.Equal(t, record.StatusBreakdown{Pending: want[i]}, s.StatusBreakdown)
		assert.Equal(t, fmt.Sprintf("Agent %d", i+1), s.AgentName)
	}
}

func TestGetStats_Empty(t *testing.T) {
	svc := NewRecordService(testutil.NewMemory().Records(), zap.NewNop())
	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalRecords)
	assert.Empty(t, stats.ByAgent)
}

func TestUpdateStatus_CompletedAtSetOnce(t *testing.T) {
	f := setup(t, 5)
	ctx := context.Background()
	id := f.mem.AllRecords()[0].ID

	first := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return first }

	notes := "  spoke to them  "
	rec, err := f.svc.UpdateStatus(ctx, id, &record.UpdateStatusRequest{Status: record.StatusCompleted, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, record.StatusCompleted, rec.Status)
	assert.Equal(t, "spoke to them", rec.Notes)
	require.NotNil(t, rec.CompletedAt)
	assert.Equal(t, first, *rec.CompletedAt)
	assert.Equal(t, "Agent 1", rec.AgentName)

	f.svc.now = func() time.Time { return first.Add(time.Hour) }
	_, err = f.svc.UpdateStatus(ctx, id, &record.UpdateStatusRequest{Status: record.StatusFailed})
	require.NoError(t, err)
	rec, err = f.svc.UpdateStatus(ctx, id, &record.UpdateStatusRequest{Status: record.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, first, *rec.CompletedAt)
	assert.Equal(t, "spoke to them", rec.Notes)
}

func TestUpdateStatus_Errors(t *testing.T) {
	f := setup(t, 5)
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, 9999, &record.UpdateStatusRequest{Status: record.StatusInProgress})
	assert.True(t, errors.Is(err, xerrors.ErrNotFound))

	_, err = f.svc.UpdateStatus(ctx, 1, &record.UpdateStatusRequest{Status: "archived"})
	assert.True(t, errors.Is(err, xerrors.ErrInvalidInput))
}

func TestGetBatch(t *testing.T) {
	f := setup(t, 12)
	ctx := context.Background()

	res, err := f.svc.GetBatch(ctx, f.batchID)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Count)
	for _, r := range res.Records {
		assert.Equal(t, f.batchID, r.BatchID)
	}

	_, err = f.svc.GetBatch(ctx, "batch-unknown")
	assert.True(t, errors.Is(err, xerrors.ErrNotFound))
}

func TestGetAgentRecords(t *testing.T) {
	f := setup(t, 12)
	ctx := context.Background()

	res, err := f.svc.GetAgentRecords(ctx, f.agents[0], "")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)

	_, err = f.svc.UpdateStatus(ctx, res.Records[0].ID, &record.UpdateStatusRequest{Status: record.StatusInProgress})
	require.NoError(t, err)

	res, err = f.svc.GetAgentRecords(ctx, f.agents[0], record.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)

	_, err = f.svc.GetAgentRecords(ctx, f.agents[0], "bogus")
	assert.True(t, errors.Is(err, xerrors.ErrInvalidInput))
}

func TestListRecords(t *testing.T) {
	f := setup(t, 23)
	ctx := context.Background()

	agentID := f.agents[4]
	res, err := f.svc.ListRecords(ctx, &record.ListFilters{AgentID: &agentID, BatchID: f.batchID})
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Pagination.Total)
	assert.Equal(t, 20, res.Pagination.Limit)

	res, err = f.svc.ListRecords(ctx, &record.ListFilters{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, res.Records, 3)
	assert.Equal(t, 3, res.Pagination.Pages)
}
