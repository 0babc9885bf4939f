//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"leaddist-service/internal/domain/admin"
	"leaddist-service/internal/domain/agent"
	"leaddist-service/internal/domain/distribution"
	"leaddist-service/internal/domain/record"
	xerrors "leaddist-service/internal/pkg/errors"
	"leaddist-service/internal/testutil"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	pool    *pgxpool.Pool
	admins  *AdminRepository
	agents  *AgentRepository
	records *RecordRepository
	store   *DistributionStore
	adminID int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pool := testutil.SetupTestDB(t)
	f := &fixture{
		pool:    pool,
		admins:  NewAdminRepository(pool),
		agents:  NewAgentRepository(pool),
		records: NewRecordRepository(pool),
		store:   NewDistributionStore(NewDB(pool)),
	}

	a := &admin.Admin{Name: "Ops", Email: "ops@example.com", PasswordHash: "x", Role: admin.RoleAdmin}
	require.NoError(t, f.admins.Create(context.Background(), a))
	f.adminID = a.ID
	return f
}

func (f *fixture) seedAgent(t *testing.T, i int, status agent.Status, assigned int64) *agent.Agent {
	t.Helper()
	ctx := context.Background()
	a := &agent.Agent{
		Name:      fmt.Sprintf("Agent %d", i),
		Email:     fmt.Sprintf("agent%d@example.com", i),
		Status:    status,
		CreatedBy: f.adminID,
	}
	require.NoError(t, f.agents.Create(ctx, a))
	if assigned > 0 {
		_, err := f.pool.Exec(ctx, `UPDATE agents SET assigned_records_count = $1 WHERE id = $2`, assigned, a.ID)
		require.NoError(t, err)
		a.AssignedRecordsCount = assigned
	}
	return a
}

func (f *fixture) newRecords(batchID string, agentID int64, from, n int) []record.Record {
	now := time.Now().UTC()
	out := make([]record.Record, n)
	for i := range out {
		data := record.NewFieldMap(3)
		data.Set("Phone", record.String(fmt.Sprintf("07%08d", from+i)))
		data.Set("FirstName", record.String(fmt.Sprintf("Lead%d", from+i)))
		data.Set("Score", record.Number(float64(from+i)))
		out[i] = record.Record{
			BatchID:         batchID,
			AssignedAgentID: agentID,
			RowIndex:        from + i,
			Data:            data,
			Status:          record.StatusPending,
			UploadedBy:      f.adminID,
			UploadedAt:      now,
		}
	}
	return out
}

func TestDistributionStore_LocksLeastLoadedActiveAgents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	loads := []int64{9, 2, 7, 2, 0, 5}
	var ids []int64
	for i, load := range loads {
		ids = append(ids, f.seedAgent(t, i+1, agent.StatusActive, load).ID)
	}
	f.seedAgent(t, 99, agent.StatusInactive, 0)

	var got []int64
	err := f.store.WithinTx(ctx, func(ctx context.Context, tx distribution.TxStore) error {
		agents, err := tx.LockActiveAgents(ctx, agent.RequiredActive)
		for _, a := range agents {
			got = append(got, a.ID)
		}
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[4], ids[1], ids[3], ids[5], ids[2]}, got)
}

func TestDistributionStore_LockBlocksConcurrentSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		f.seedAgent(t, i, agent.StatusActive, 0)
	}

	locked := make(chan struct{})
	release := make(chan struct{})
	first := make(chan error, 1)
	go func() {
		first <- f.store.WithinTx(ctx, func(ctx context.Context, tx distribution.TxStore) error {
			if _, err := tx.LockActiveAgents(ctx, agent.RequiredActive); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	second := make(chan error, 1)
	go func() {
		second <- f.store.WithinTx(ctx, func(ctx context.Context, tx distribution.TxStore) error {
			_, err := tx.LockActiveAgents(ctx, agent.RequiredActive)
			return err
		})
	}()

	select {
	case err := <-second:
		t.Fatalf("second selection finished while rows were locked: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-first)
	select {
	case err := <-second:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("second selection never acquired the rows")
	}
}

func TestDistributionStore_CommitsRecordsAndCounters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a1 := f.seedAgent(t, 1, agent.StatusActive, 0)
	a2 := f.seedAgent(t, 2, agent.StatusActive, 4)

	batch := "batch-commit"
	err := f.store.WithinTx(ctx, func(ctx context.Context, tx distribution.TxStore) error {
		recs := append(f.newRecords(batch, a1.ID, 0, 3), f.newRecords(batch, a2.ID, 3, 2)...)
		if err := tx.InsertRecords(ctx, recs); err != nil {
			return err
		}
		if err := tx.IncrementAssignedCount(ctx, a1.ID, 3); err != nil {
			return err
		}
		return tx.IncrementAssignedCount(ctx, a2.ID, 2)
	})
	require.NoError(t, err)

	got, err := f.records.ListByBatch(ctx, batch)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, rec := range got {
		assert.Equal(t, i, rec.RowIndex)
		assert.Equal(t, []string{"Phone", "FirstName", "Score"}, rec.Data.Keys())
		assert.True(t, rec.Data.Get("Score").IsNumber())
		assert.Equal(t, record.StatusPending, rec.Status)
		assert.Nil(t, rec.CompletedAt)
	}
	assert.Equal(t, a1.ID, got[0].AssignedAgentID)
	assert.Equal(t, "Agent 1", got[0].AgentName)
	assert.Equal(t, a2.ID, got[4].AssignedAgentID)

	reloaded, err := f.agents.FindByID(ctx, a1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), reloaded.AssignedRecordsCount)
	reloaded, err = f.agents.FindByID(ctx, a2.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), reloaded.AssignedRecordsCount)
}

func TestDistributionStore_RollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a1 := f.seedAgent(t, 1, agent.StatusActive, 0)

	err := f.store.WithinTx(ctx, func(ctx context.Context, tx distribution.TxStore) error {
		if err := tx.IncrementAssignedCount(ctx, a1.ID, 2); err != nil {
			return err
		}
		recs := f.newRecords("batch-dup", a1.ID, 0, 2)
		recs[1].RowIndex = 0
		return tx.InsertRecords(ctx, recs)
	})
	require.Error(t, err)

	total, err := f.records.CountAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	reloaded, err := f.agents.FindByID(ctx, a1.ID)
	require.NoError(t, err)
	assert.Zero(t, reloaded.AssignedRecordsCount)

	err = f.store.WithinTx(ctx, func(ctx context.Context, tx distribution.TxStore) error {
		return tx.IncrementAssignedCount(ctx, 424242, 1)
	})
	assert.True(t, errors.Is(err, xerrors.ErrNotFound))
}

func TestRecordRepository_UpdateStatusStampsCompletedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a1 := f.seedAgent(t, 1, agent.StatusActive, 0)
	require.NoError(t, f.store.WithinTx(ctx, func(ctx context.Context, tx distribution.TxStore) error {
		return tx.InsertRecords(ctx, f.newRecords("batch-status", a1.ID, 0, 1))
	}))
	recs, err := f.records.ListByBatch(ctx, "batch-status")
	require.NoError(t, err)
	id := recs[0].ID

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(3 * time.Hour)
	notes := "called back"

	require.NoError(t, f.records.UpdateStatus(ctx, id, record.StatusCompleted, &notes, first))
	require.NoError(t, f.records.UpdateStatus(ctx, id, record.StatusFailed, nil, later))
	require.NoError(t, f.records.UpdateStatus(ctx, id, record.StatusCompleted, nil, later))

	got, err := f.records.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, record.StatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, first.Equal(*got.CompletedAt))
	assert.Equal(t, "called back", got.Notes)

	err = f.records.UpdateStatus(ctx, 999999, record.StatusFailed, nil, later)
	assert.True(t, errors.Is(err, xerrors.ErrNotFound))
}

func TestRecordRepository_CountByAgentAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a1 := f.seedAgent(t, 1, agent.StatusActive, 0)
	a2 := f.seedAgent(t, 2, agent.StatusActive, 0)
	require.NoError(t, f.store.WithinTx(ctx, func(ctx context.Context, tx distribution.TxStore) error {
		return tx.InsertRecords(ctx, append(f.newRecords("batch-stats", a1.ID, 0, 3), f.newRecords("batch-stats", a2.ID, 3, 2)...))
	}))
	recs, err := f.records.ListByAgent(ctx, a1.ID, "")
	require.NoError(t, err)
	require.NoError(t, f.records.UpdateStatus(ctx, recs[0].ID, record.StatusCompleted, nil, time.Now()))

	counts, err := f.records.CountByAgentAndStatus(ctx)
	require.NoError(t, err)
	stats := record.AggregateStats(5, counts)
	require.Len(t, stats.ByAgent, 2)
	assert.Equal(t, int64(3), stats.ByAgent[0].TotalAssigned)
	assert.Equal(t, record.StatusBreakdown{Pending: 2, Completed: 1}, stats.ByAgent[0].StatusBreakdown)
	assert.Equal(t, "agent2@example.com", stats.ByAgent[1].AgentEmail)
}

func TestAgentRepository_RecountAssigned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a1 := f.seedAgent(t, 1, agent.StatusActive, 0)
	a2 := f.seedAgent(t, 2, agent.StatusActive, 0)
	require.NoError(t, f.store.WithinTx(ctx, func(ctx context.Context, tx distribution.TxStore) error {
		return tx.InsertRecords(ctx, f.newRecords("batch-recount", a1.ID, 0, 4))
	}))
	_, err := f.pool.Exec(ctx, `UPDATE agents SET assigned_records_count = 7 WHERE id = $1`, a2.ID)
	require.NoError(t, err)

	corrections, err := f.agents.RecountAssigned(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []agent.CountCorrection{
		{AgentID: a1.ID, Name: "Agent 1", Previous: 0, Actual: 4},
		{AgentID: a2.ID, Name: "Agent 2", Previous: 7, Actual: 0},
	}, corrections)

	corrections, err = f.agents.RecountAssigned(ctx)
	require.NoError(t, err)
	assert.Empty(t, corrections)
}

func TestAgentRepository_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.seedAgent(t, 1, agent.StatusActive, 0)

	err := f.agents.Create(context.Background(), &agent.Agent{
		Name: "Copy", Email: "agent1@example.com", Status: agent.StatusActive, CreatedBy: f.adminID,
	})
	assert.True(t, errors.Is(err, xerrors.ErrDuplicateEntry))
}
