// internal/repository/postgres/distribution_store.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"leaddist-service/internal/domain/agent"
	"leaddist-service/internal/domain/distribution"
	"leaddist-service/internal/domain/record"
	xerrors "leaddist-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

// DistributionStore runs a whole batch assignment in one transaction.
type DistributionStore struct {
	db *DB
}

func NewDistributionStore(db *DB) *DistributionStore {
	return &DistributionStore{db: db}
}

func (s *DistributionStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx distribution.TxStore) error) error {
	return s.db.InTx(ctx, func(tx pgx.Tx) error {
		return fn(ctx, &distributionTx{tx: tx})
	})
}

type distributionTx struct {
	tx pgx.Tx
}

func (t *distributionTx) LockActiveAgents(ctx context.Context, limit int) ([]agent.Agent, error) {
	query := `
		SELECT ` + agentColumns + `
		FROM agents
		WHERE status = 'active'
		ORDER BY assigned_records_count ASC, id ASC
		LIMIT $1
		FOR UPDATE
	`
	rows, err := t.tx.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select active agents: %w", err)
	}
	return collectAgents(rows)
}

var recordCopyColumns = []string{
	"batch_id", "assigned_agent_id", "row_index", "data", "status", "uploaded_by", "uploaded_at", "notes",
}

func (t *distributionTx) InsertRecords(ctx context.Context, records []record.Record) error {
	rows := make([][]interface{}, len(records))
	for i, rec := range records {
		data, err := json.Marshal(rec.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal row %d: %w", rec.RowIndex, err)
		}
		rows[i] = []interface{}{
			rec.BatchID, rec.AssignedAgentID, rec.RowIndex, string(data),
			string(rec.Status), rec.UploadedBy, rec.UploadedAt, rec.Notes,
		}
	}

	copied, err := t.tx.CopyFrom(ctx, pgx.Identifier{"records"}, recordCopyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to insert records: %w", err)
	}
	if copied != int64(len(records)) {
		return fmt.Errorf("inserted %d of %d records", copied, len(records))
	}
	return nil
}

func (t *distributionTx) IncrementAssignedCount(ctx context.Context, agentID int64, delta int64) error {
	result, err := t.tx.Exec(ctx, `
		UPDATE agents
		SET assigned_records_count = assigned_records_count + $1, updated_at = NOW()
		WHERE id = $2
	`, delta, agentID)
	if err != nil {
		return fmt.Errorf("failed to update agent %d counter: %w", agentID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("agent %d: %w", agentID, xerrors.ErrNotFound)
	}
	return nil
}
