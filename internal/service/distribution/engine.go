// internal/service/distribution/engine.go
package distribution

import (
	"context"
	"fmt"
	"time"

	"leaddist-service/internal/domain/agent"
	"leaddist-service/internal/domain/distribution"
	"leaddist-service/internal/domain/record"

	"go.uber.org/zap"
)

// Engine splits validated rows across the least-loaded active agents.
type Engine struct {
	store  distribution.Store
	roster distribution.RosterLock
	logger *zap.Logger
	now    func() time.Time
}

func NewEngine(store distribution.Store, roster distribution.RosterLock, logger *zap.Logger) *Engine {
	return &Engine{
		store:  store,
		roster: roster,
		logger: logger,
		now:    time.Now,
	}
}

// Distribute assigns rows in contiguous, source-ordered slices to exactly
// agent.RequiredActive agents and bumps their load counters. Either every
// record and counter change is committed or none is.
func (e *Engine) Distribute(ctx context.Context, rows []record.FieldMap, uploadedBy int64) (*distribution.Plan, error) {
	if len(rows) == 0 {
		return nil, distribution.ErrEmptyBatch
	}

	var plan *distribution.Plan
	err := e.roster.WithLock(ctx, func(ctx context.Context) error {
		return e.store.WithinTx(ctx, func(ctx context.Context, tx distribution.TxStore) error {
			p, err := e.assign(ctx, tx, rows, uploadedBy)
			if err != nil {
				return err
			}
			plan = p
			return nil
		})
	})
	if err != nil {
		if _, ok := distribution.AsInsufficientAgents(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to distribute records: %w", err)
	}

	e.logger.Info("records distributed",
		zap.String("batch_id", plan.BatchID),
		zap.Int("total_records", plan.TotalRecords),
		zap.Int64("uploaded_by", uploadedBy),
	)
	return plan, nil
}

func (e *Engine) assign(ctx context.Context, tx distribution.TxStore, rows []record.FieldMap, uploadedBy int64) (*distribution.Plan, error) {
	agents, err := tx.LockActiveAgents(ctx, agent.RequiredActive)
	if err != nil {
		return nil, err
	}
	if len(agents) < agent.RequiredActive {
		e.logger.Warn("not enough active agents for distribution",
			zap.Int("found", len(agents)),
			zap.Int("required", agent.RequiredActive),
		)
		return nil, &distribution.InsufficientAgentsError{Found: len(agents)}
	}

	now := e.now().UTC()
	plan := &distribution.Plan{
		BatchID:      distribution.NewBatchID(now),
		TotalRecords: len(rows),
		Distribution: make([]distribution.Allocation, 0, len(agents)),
	}

	shares := distribution.Split(len(rows), len(agents))
	records := make([]record.Record, 0, len(rows))
	offset := 0
	for i, a := range agents {
		for j := offset; j < offset+shares[i]; j++ {
			records = append(records, record.Record{
				BatchID:         plan.BatchID,
				AssignedAgentID: a.ID,
				RowIndex:        j,
				Data:            rows[j],
				Status:          record.StatusPending,
				UploadedBy:      uploadedBy,
				UploadedAt:      now,
			})
		}
		offset += shares[i]

		plan.Distribution = append(plan.Distribution, distribution.Allocation{
			AgentID:       a.ID,
			AgentName:     a.Name,
			AgentEmail:    a.Email,
			AssignedCount: shares[i],
		})
	}

	if err := tx.InsertRecords(ctx, records); err != nil {
		return nil, err
	}
	for _, alloc := range plan.Distribution {
		if alloc.AssignedCount == 0 {
			continue
		}
		if err := tx.IncrementAssignedCount(ctx, alloc.AgentID, int64(alloc.AssignedCount)); err != nil {
			return nil, err
		}
	}

	return plan, nil
}
