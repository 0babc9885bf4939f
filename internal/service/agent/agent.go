// internal/service/agent/agent.go
package agent

import (
	"context"
	"errors"
	"fmt"

	"leaddist-service/internal/domain/agent"
	"leaddist-service/internal/domain/distribution"
	xerrors "leaddist-service/internal/pkg/errors"
	"leaddist-service/internal/pkg/pagination"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, a *agent.Agent) error
	FindByID(ctx context.Context, id int64) (*agent.Agent, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	List(ctx context.Context, filters *agent.ListFilters) ([]agent.Agent, int64, error)
	Update(ctx context.Context, a *agent.Agent) error
	Deactivate(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context, status agent.Status) (int64, error)
	RecountAssigned(ctx context.Context) ([]agent.CountCorrection, error)
}

type AgentService struct {
	repo   Repository
	roster distribution.RosterLock
	logger *zap.Logger
}

func NewAgentService(repo Repository, roster distribution.RosterLock, logger *zap.Logger) *AgentService {
	return &AgentService{
		repo:   repo,
		roster: roster,
		logger: logger,
	}
}

// CreateAgent registers a new active agent with an empty load.
func (s *AgentService) CreateAgent(ctx context.Context, adminID int64, req *agent.CreateAgentRequest) (*agent.Agent, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrInvalidInput, err)
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: agent with this email already exists", xerrors.ErrDuplicateEntry)
	}

	a := &agent.Agent{
		Name:      req.Name,
		Email:     req.Email,
		Status:    agent.StatusActive,
		CreatedBy: adminID,
	}
	if req.Phone != "" {
		a.Phone = &req.Phone
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("agent created",
		zap.Int64("agent_id", a.ID),
		zap.String("email", a.Email),
		zap.Int64("created_by", adminID),
	)
	return a, nil
}

// GetAgent retrieves an agent by ID
func (s *AgentService) GetAgent(ctx context.Context, id int64) (*agent.Agent, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListAgents returns a page of agents, optionally filtered by status.
func (s *AgentService) ListAgents(ctx context.Context, filters *agent.ListFilters) (*agent.ListResponse, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, fmt.Errorf("%w: status must be active or inactive", xerrors.ErrInvalidInput)
	}
	filters.Page, filters.Limit = pagination.Normalize(filters.Page, filters.Limit)

	agents, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	return &agent.ListResponse{
		Agents:     agents,
		Pagination: pagination.New(total, filters.Page, filters.Limit),
	}, nil
}

// UpdateAgent applies a partial update.
func (s *AgentService) UpdateAgent(ctx context.Context, id int64, req *agent.UpdateAgentRequest) (*agent.Agent, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrInvalidInput, err)
	}

	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != a.Email {
		exists, err := s.repo.ExistsByEmail(ctx, *req.Email, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("%w: agent with this email already exists", xerrors.ErrDuplicateEntry)
		}
		a.Email = *req.Email
	}
	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Phone != nil {
		if *req.Phone == "" {
			a.Phone = nil
		} else {
			phone := *req.Phone
			a.Phone = &phone
		}
	}
	if req.Status != nil {
		a.Status = *req.Status
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("agent updated", zap.Int64("agent_id", id))
	return a, nil
}

// DeleteAgent deactivates an agent. Agents that still own records are refused.
func (s *AgentService) DeleteAgent(ctx context.Context, id int64) error {
	return s.roster.WithLock(ctx, func(ctx context.Context) error {
		a, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if a.AssignedRecordsCount > 0 {
			return &agent.HasRecordsError{AgentID: id, Assigned: a.AssignedRecordsCount}
		}

		if err := s.repo.Deactivate(ctx, id); err != nil {
			if errors.Is(err, xerrors.ErrNotFound) {
				return fmt.Errorf("%w: agent changed while deleting, retry", xerrors.ErrConflict)
			}
			return err
		}

		s.logger.Info("agent deactivated", zap.Int64("agent_id", id))
		return nil
	})
}

// GetActiveCount reports how close the roster is to being distributable.
func (s *AgentService) GetActiveCount(ctx context.Context) (*agent.ActiveCount, error) {
	count, err := s.repo.CountByStatus(ctx, agent.StatusActive)
	if err != nil {
		return nil, err
	}
	ac := agent.NewActiveCount(count)
	return &ac, nil
}

// Recount repairs load counters that drifted from the records table.
func (s *AgentService) Recount(ctx context.Context) ([]agent.CountCorrection, error) {
	var corrections []agent.CountCorrection
	err := s.roster.WithLock(ctx, func(ctx context.Context) error {
		var err error
		corrections, err = s.repo.RecountAssigned(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to recount agents: %w", err)
	}

	for _, c := range corrections {
		s.logger.Warn("agent counter corrected",
			zap.Int64("agent_id", c.AgentID),
			zap.Int64("previous", c.Previous),
			zap.Int64("actual", c.Actual),
		)
	}
	return corrections, nil
}
