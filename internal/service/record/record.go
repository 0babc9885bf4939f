// internal/service/record/record.go
package record

import (
	"context"
	"fmt"
	"time"

	"leaddist-service/internal/domain/record"
	xerrors "leaddist-service/internal/pkg/errors"
	"leaddist-service/internal/pkg/pagination"

	"go.uber.org/zap"
)

type Repository interface {
	FindByID(ctx context.Context, id int64) (*record.Record, error)
	List(ctx context.Context, filters *record.ListFilters) ([]record.Record, int64, error)
	ListByBatch(ctx context.Context, batchID string) ([]record.Record, error)
	ListByAgent(ctx context.Context, agentID int64, status record.Status) ([]record.Record, error)
	UpdateStatus(ctx context.Context, id int64, status record.Status, notes *string, now time.Time) error
	CountAll(ctx context.Context) (int64, error)
	CountByAgentAndStatus(ctx context.Context) ([]record.StatusCount, error)
}

type RecordService struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewRecordService(repo Repository, logger *zap.Logger) *RecordService {
	return &RecordService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// ListRecords returns a filtered page of records.
func (s *RecordService) ListRecords(ctx context.Context, filters *record.ListFilters) (*record.ListResponse, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", xerrors.ErrInvalidInput, filters.Status)
	}
	filters.Page, filters.Limit = pagination.Normalize(filters.Page, filters.Limit)

	records, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	return &record.ListResponse{
		Records:    records,
		Pagination: pagination.New(total, filters.Page, filters.Limit),
	}, nil
}

// GetBatch returns every record of an upload.
func (s *RecordService) GetBatch(ctx context.Context, batchID string) (*record.BatchResponse, error) {
	if batchID == "" {
		return nil, fmt.Errorf("%w: batch id is required", xerrors.ErrInvalidInput)
	}

	records, err := s.repo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, xerrors.ErrNotFound
	}

	return &record.BatchResponse{BatchID: batchID, Count: len(records), Records: records}, nil
}

// GetAgentRecords returns an agent's records, optionally by status.
func (s *RecordService) GetAgentRecords(ctx context.Context, agentID int64, status record.Status) (*record.AgentRecordsResponse, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", xerrors.ErrInvalidInput, status)
	}

	records, err := s.repo.ListByAgent(ctx, agentID, status)
	if err != nil {
		return nil, err
	}
	return &record.AgentRecordsResponse{AgentID: agentID, Count: len(records), Records: records}, nil
}

// UpdateStatus moves a record through the workflow and returns the stored result.
func (s *RecordService) UpdateStatus(ctx context.Context, id int64, req *record.UpdateStatusRequest) (*record.Record, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrInvalidInput, err)
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status, req.Notes, s.now().UTC()); err != nil {
		return nil, err
	}

	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("record status updated",
		zap.Int64("record_id", id),
		zap.String("status", string(req.Status)),
	)
	return rec, nil
}

// GetStats aggregates record counts per agent and status.
func (s *RecordService) GetStats(ctx context.Context) (*record.Stats, error) {
	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountByAgentAndStatus(ctx)
	if err != nil {
		return nil, err
	}
	return record.AggregateStats(total, counts), nil
}
