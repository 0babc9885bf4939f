// internal/repository/postgres/record_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"leaddist-service/internal/domain/record"
	xerrors "leaddist-service/internal/pkg/errors"
	"leaddist-service/internal/pkg/pagination"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RecordRepository struct {
	db *pgxpool.Pool
}

func NewRecordRepository(db *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{db: db}
}

const recordSelect = `
	SELECT r.id, r.batch_id, r.assigned_agent_id, r.row_index, r.data, r.status,
	       r.uploaded_by, r.uploaded_at, r.completed_at, r.notes, r.created_at, r.updated_at,
	       a.name, a.email
	FROM records r
	JOIN agents a ON a.id = r.assigned_agent_id
`

func scanRecord(row pgx.Row) (*record.Record, error) {
	var (
		rec    record.Record
		data   []byte
		status string
	)
	err := row.Scan(
		&rec.ID, &rec.BatchID, &rec.AssignedAgentID, &rec.RowIndex, &data, &status,
		&rec.UploadedBy, &rec.UploadedAt, &rec.CompletedAt, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.AgentName, &rec.AgentEmail,
	)
	if err != nil {
		return nil, err
	}
	rec.Status = record.Status(status)
	if err := json.Unmarshal(data, &rec.Data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record data: %w", err)
	}
	return &rec, nil
}

func collectRecords(rows pgx.Rows) ([]record.Record, error) {
	defer rows.Close()

	records := []record.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

// FindByID retrieves a record by ID
func (r *RecordRepository) FindByID(ctx context.Context, id int64) (*record.Record, error) {
	rec, err := scanRecord(r.db.QueryRow(ctx, recordSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if mapped := mapError(err); mapped == xerrors.ErrNotFound {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to find record: %w", err)
	}
	return rec, nil
}

// List returns one page of records, most recently uploaded first.
func (r *RecordRepository) List(ctx context.Context, filters *record.ListFilters) ([]record.Record, int64, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filters.AgentID != nil {
		conditions = append(conditions, fmt.Sprintf("r.assigned_agent_id = $%d", argPos))
		args = append(args, *filters.AgentID)
		argPos++
	}
	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", argPos))
		args = append(args, string(filters.Status))
		argPos++
	}
	if filters.BatchID != "" {
		conditions = append(conditions, fmt.Sprintf("r.batch_id = $%d", argPos))
		args = append(args, filters.BatchID)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM records r WHERE %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count records: %w", err)
	}

	page, limit := pagination.Normalize(filters.Page, filters.Limit)
	filters.Page, filters.Limit = page, limit

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY r.uploaded_at DESC, r.id ASC
		LIMIT $%d OFFSET $%d
	`, recordSelect, whereClause, argPos, argPos+1)
	args = append(args, limit, pagination.Offset(page, limit))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list records: %w", err)
	}
	records, err := collectRecords(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListByBatch returns every record of a batch grouped by agent in source order.
func (r *RecordRepository) ListByBatch(ctx context.Context, batchID string) ([]record.Record, error) {
	rows, err := r.db.Query(ctx,
		recordSelect+` WHERE r.batch_id = $1 ORDER BY r.assigned_agent_id, r.row_index`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list batch records: %w", err)
	}
	return collectRecords(rows)
}

// ListByAgent returns an agent's records, newest batch first.
func (r *RecordRepository) ListByAgent(ctx context.Context, agentID int64, status record.Status) ([]record.Record, error) {
	query := recordSelect + ` WHERE r.assigned_agent_id = $1`
	args := []interface{}{agentID}
	if status != "" {
		query += ` AND r.status = $2`
		args = append(args, string(status))
	}
	query += ` ORDER BY r.uploaded_at DESC, r.row_index ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list agent records: %w", err)
	}
	return collectRecords(rows)
}

// UpdateStatus moves a record to status. completed_at is stamped only the
// first time the record reaches completed.
func (r *RecordRepository) UpdateStatus(ctx context.Context, id int64, status record.Status, notes *string, now time.Time) error {
	query := `
		UPDATE records
		SET status = $1,
		    notes = COALESCE($2, notes),
		    completed_at = CASE WHEN $1 = 'completed' THEN COALESCE(completed_at, $3) ELSE completed_at END,
		    updated_at = $3
		WHERE id = $4
	`
	result, err := r.db.Exec(ctx, query, string(status), notes, now, id)
	if err != nil {
		return fmt.Errorf("failed to update record status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *RecordRepository) CountAll(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM records`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return total, nil
}

// CountByAgentAndStatus groups record counts by agent and status.
func (r *RecordRepository) CountByAgentAndStatus(ctx context.Context) ([]record.StatusCount, error) {
	query := `
		SELECT r.assigned_agent_id, a.name, a.email, r.status, COUNT(*)
		FROM records r
		JOIN agents a ON a.id = r.assigned_agent_id
		GROUP BY r.assigned_agent_id, a.name, a.email, r.status
		ORDER BY r.assigned_agent_id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate records: %w", err)
	}
	defer rows.Close()

	counts := []record.StatusCount{}
	for rows.Next() {
		var (
			c      record.StatusCount
			status string
		)
		if err := rows.Scan(&c.AgentID, &c.AgentName, &c.AgentEmail, &status, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		c.Status = record.Status(status)
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status counts: %w", err)
	}
	return counts, nil
}
