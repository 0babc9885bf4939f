// internal/repository/postgres/agent_repo.go
package postgres

import (
	"context"
	"fmt"
	"strings"

	"leaddist-service/internal/domain/agent"
	xerrors "leaddist-service/internal/pkg/errors"
	"leaddist-service/internal/pkg/pagination"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AgentRepository struct {
	db *pgxpool.Pool
}

func NewAgentRepository(db *pgxpool.Pool) *AgentRepository {
	return &AgentRepository{db: db}
}

const agentColumns = `id, name, email, phone, status, assigned_records_count, created_by, created_at, updated_at`

// scanAgent reads one agent row selected with agentColumns.
func scanAgent(row pgx.Row) (*agent.Agent, error) {
	var (
		a      agent.Agent
		status string
	)
	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.Phone, &status,
		&a.AssignedRecordsCount, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = agent.Status(status)
	return &a, nil
}

func collectAgents(rows pgx.Rows) ([]agent.Agent, error) {
	defer rows.Close()

	agents := []agent.Agent{}
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		agents = append(agents, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate agents: %w", err)
	}
	return agents, nil
}

// Create creates a new agent
func (r *AgentRepository) Create(ctx context.Context, a *agent.Agent) error {
	query := `
		INSERT INTO agents (name, email, phone, status, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, assigned_records_count, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, a.Name, a.Email, a.Phone, string(a.Status), a.CreatedBy).
		Scan(&a.ID, &a.AssignedRecordsCount, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", mapError(err))
	}
	return nil
}

// FindByID retrieves an agent by ID
func (r *AgentRepository) FindByID(ctx context.Context, id int64) (*agent.Agent, error) {
	a, err := scanAgent(r.db.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = $1`, id))
	if err != nil {
		if mapped := mapError(err); mapped == xerrors.ErrNotFound {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to find agent: %w", err)
	}
	return a, nil
}

// ExistsByEmail checks for another agent with email, ignoring excludeID.
func (r *AgentRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM agents WHERE email = $1 AND id <> $2)`,
		email, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check agent email: %w", err)
	}
	return exists, nil
}

// List returns one page of agents, newest first.
func (r *AgentRepository) List(ctx context.Context, filters *agent.ListFilters) ([]agent.Agent, int64, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(filters.Status))
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM agents WHERE %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count agents: %w", err)
	}

	page, limit := pagination.Normalize(filters.Page, filters.Limit)
	filters.Page, filters.Limit = page, limit

	query := fmt.Sprintf(`
		SELECT %s
		FROM agents
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, agentColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, pagination.Offset(page, limit))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list agents: %w", err)
	}
	agents, err := collectAgents(rows)
	if err != nil {
		return nil, 0, err
	}
	return agents, total, nil
}

// Update persists name, email, phone and status.
func (r *AgentRepository) Update(ctx context.Context, a *agent.Agent) error {
	query := `
		UPDATE agents
		SET name = $1, email = $2, phone = $3, status = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query, a.Name, a.Email, a.Phone, string(a.Status), a.ID).Scan(&a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update agent: %w", mapError(err))
	}
	return nil
}

// Deactivate soft-deletes an agent that owns no records.
func (r *AgentRepository) Deactivate(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `
		UPDATE agents SET status = 'inactive', updated_at = NOW()
		WHERE id = $1 AND assigned_records_count = 0
	`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate agent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *AgentRepository) CountByStatus(ctx context.Context, status agent.Status) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM agents WHERE status = $1`, string(status)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count agents: %w", err)
	}
	return count, nil
}

// RecountAssigned resets every drifted counter to the number of records
// that point at the agent and returns what changed.
func (r *AgentRepository) RecountAssigned(ctx context.Context) ([]agent.CountCorrection, error) {
	query := `
		WITH actual AS (
			SELECT a.id, a.assigned_records_count AS previous, COUNT(rec.id) AS actual
			FROM agents a
			LEFT JOIN records rec ON rec.assigned_agent_id = a.id
			GROUP BY a.id
		)
		UPDATE agents a
		SET assigned_records_count = actual.actual, updated_at = NOW()
		FROM actual
		WHERE a.id = actual.id AND a.assigned_records_count <> actual.actual
		RETURNING a.id, a.name, actual.previous, actual.actual
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to recount agents: %w", err)
	}
	defer rows.Close()

	corrections := []agent.CountCorrection{}
	for rows.Next() {
		var c agent.CountCorrection
		if err := rows.Scan(&c.AgentID, &c.Name, &c.Previous, &c.Actual); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		corrections = append(corrections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate corrections: %w", err)
	}
	return corrections, nil
}
