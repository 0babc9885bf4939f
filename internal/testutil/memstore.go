// Package testutil holds in-memory stand-ins for the postgres and redis
// backed stores, shared by service and handler tests.
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"leaddist-service/internal/domain/admin"
	"leaddist-service/internal/domain/agent"
	"leaddist-service/internal/domain/distribution"
	"leaddist-service/internal/domain/record"
	xerrors "leaddist-service/internal/pkg/errors"
	"leaddist-service/internal/pkg/pagination"
)

// ErrInjected is the default failure used by the Fail* hooks.
var ErrInjected = errors.New("injected failure")

// Memory is a transactional in-memory database. Transactions run against a
// copy of the state and are swapped in only when fn succeeds.
type Memory struct {
	mu sync.Mutex

	agents  map[int64]agent.Agent
	records []record.Record
	admins  map[int64]admin.Admin

	nextAgentID  int64
	nextRecordID int64
	nextAdminID  int64

	// FailInsert makes InsertRecords return the error.
	FailInsert error
	// FailIncrementFor makes IncrementAssignedCount fail for this agent id.
	FailIncrementFor int64

	Commits   int
	Rollbacks int
	now       func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		agents: make(map[int64]agent.Agent),
		admins: make(map[int64]admin.Admin),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) Agents() *MemAgents   { return &MemAgents{m} }
func (m *Memory) Records() *MemRecords { return &MemRecords{m} }
func (m *Memory) Admins() *MemAdmins   { return &MemAdmins{m} }

// SeedAgent inserts an agent directly and returns its id.
func (m *Memory) SeedAgent(name, email string, status agent.Status, assigned int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextAgentID++
	now := m.now()
	m.agents[m.nextAgentID] = agent.Agent{
		ID:                   m.nextAgentID,
		Name:                 name,
		Email:                email,
		Status:               status,
		AssignedRecordsCount: assigned,
		CreatedBy:            1,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	return m.nextAgentID
}

// Agent returns a copy of the stored agent.
func (m *Memory) Agent(id int64) (agent.Agent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[id]
	return a, ok
}

// AllRecords returns every stored record ordered by id.
func (m *Memory) AllRecords() []record.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]record.Record, len(m.records))
	copy(out, m.records)
	return out
}

// SetAssignedCount overwrites a counter, for drift scenarios.
func (m *Memory) SetAssignedCount(id int64, n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.agents[id]
	a.AssignedRecordsCount = n
	m.agents[id] = a
}

// ========== distribution.Store ==========

func (m *Memory) WithinTx(ctx context.Context, fn func(ctx context.Context, tx distribution.TxStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{
		mem:          m,
		agents:       make(map[int64]agent.Agent, len(m.agents)),
		records:      append([]record.Record(nil), m.records...),
		nextRecordID: m.nextRecordID,
	}
	for id, a := range m.agents {
		tx.agents[id] = a
	}

	if err := fn(ctx, tx); err != nil {
		m.Rollbacks++
		return err
	}

	m.agents = tx.agents
	m.records = tx.records
	m.nextRecordID = tx.nextRecordID
	m.Commits++
	return nil
}

type memTx struct {
	mem          *Memory
	agents       map[int64]agent.Agent
	records      []record.Record
	nextRecordID int64
}

func (t *memTx) LockActiveAgents(_ context.Context, limit int) ([]agent.Agent, error) {
	var active []agent.Agent
	for _, a := range t.agents {
		if a.Status == agent.StatusActive {
			active = append(active, a)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].AssignedRecordsCount != active[j].AssignedRecordsCount {
			return active[i].AssignedRecordsCount < active[j].AssignedRecordsCount
		}
		return active[i].ID < active[j].ID
	})
	if len(active) > limit {
		active = active[:limit]
	}
	return active, nil
}

func (t *memTx) InsertRecords(_ context.Context, records []record.Record) error {
	if t.mem.FailInsert != nil {
		return t.mem.FailInsert
	}
	seen := make(map[int]bool, len(records))
	for _, r := range records {
		if seen[r.RowIndex] {
			return xerrors.ErrDuplicateEntry
		}
		seen[r.RowIndex] = true
	}
	for _, r := range records {
		t.nextRecordID++
		r.ID = t.nextRecordID
		r.CreatedAt = r.UploadedAt
		r.UpdatedAt = r.UploadedAt
		t.records = append(t.records, r)
	}
	return nil
}

func (t *memTx) IncrementAssignedCount(_ context.Context, agentID int64, delta int64) error {
	if t.mem.FailIncrementFor != 0 && t.mem.FailIncrementFor == agentID {
		return ErrInjected
	}
	a, ok := t.agents[agentID]
	if !ok {
		return xerrors.ErrNotFound
	}
	a.AssignedRecordsCount += delta
	t.agents[agentID] = a
	return nil
}

// ========== agent repository ==========

type MemAgents struct{ m *Memory }

func (r *MemAgents) Create(_ context.Context, a *agent.Agent) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, existing := range r.m.agents {
		if existing.Email == a.Email {
			return xerrors.ErrDuplicateEntry
		}
	}
	r.m.nextAgentID++
	now := r.m.now()
	a.ID = r.m.nextAgentID
	if a.Status == "" {
		a.Status = agent.StatusActive
	}
	a.CreatedAt, a.UpdatedAt = now, now
	r.m.agents[a.ID] = *a
	return nil
}

func (r *MemAgents) FindByID(_ context.Context, id int64) (*agent.Agent, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.agents[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return &a, nil
}

func (r *MemAgents) ExistsByEmail(_ context.Context, email string, excludeID int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, a := range r.m.agents {
		if a.Email == email && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemAgents) List(_ context.Context, filters *agent.ListFilters) ([]agent.Agent, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var out []agent.Agent
	for _, a := range r.m.agents {
		if filters.Status != "" && a.Status != filters.Status {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, filters.Page, filters.Limit), int64(len(out)), nil
}

func (r *MemAgents) Update(_ context.Context, a *agent.Agent) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.agents[a.ID]
	if !ok {
		return xerrors.ErrNotFound
	}
	stored.Name, stored.Email, stored.Phone, stored.Status = a.Name, a.Email, a.Phone, a.Status
	stored.UpdatedAt = r.m.now()
	r.m.agents[a.ID] = stored
	*a = stored
	return nil
}

func (r *MemAgents) Deactivate(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.agents[id]
	if !ok || a.AssignedRecordsCount != 0 {
		return xerrors.ErrNotFound
	}
	a.Status = agent.StatusInactive
	a.UpdatedAt = r.m.now()
	r.m.agents[id] = a
	return nil
}

func (r *MemAgents) CountByStatus(_ context.Context, status agent.Status) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, a := range r.m.agents {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *MemAgents) RecountAssigned(_ context.Context) ([]agent.CountCorrection, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	actual := make(map[int64]int64)
	for _, rec := range r.m.records {
		actual[rec.AssignedAgentID]++
	}

	var corrections []agent.CountCorrection
	for id, a := range r.m.agents {
		if a.AssignedRecordsCount == actual[id] {
			continue
		}
		corrections = append(corrections, agent.CountCorrection{
			AgentID:  id,
			Name:     a.Name,
			Previous: a.AssignedRecordsCount,
			Actual:   actual[id],
		})
		a.AssignedRecordsCount = actual[id]
		r.m.agents[id] = a
	}
	sort.Slice(corrections, func(i, j int) bool { return corrections[i].AgentID < corrections[j].AgentID })
	return corrections, nil
}

// ========== record repository ==========

type MemRecords struct{ m *Memory }

func (r *MemRecords) joined(rec record.Record) record.Record {
	if a, ok := r.m.agents[rec.AssignedAgentID]; ok {
		rec.AgentName = a.Name
		rec.AgentEmail = a.Email
	}
	return rec
}

func (r *MemRecords) FindByID(_ context.Context, id int64) (*record.Record, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, rec := range r.m.records {
		if rec.ID == id {
			out := r.joined(rec)
			return &out, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (r *MemRecords) List(_ context.Context, filters *record.ListFilters) ([]record.Record, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var out []record.Record
	for _, rec := range r.m.records {
		if filters.AgentID != nil && rec.AssignedAgentID != *filters.AgentID {
			continue
		}
		if filters.Status != "" && rec.Status != filters.Status {
			continue
		}
		if filters.BatchID != "" && rec.BatchID != filters.BatchID {
			continue
		}
		out = append(out, r.joined(rec))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, filters.Page, filters.Limit), int64(len(out)), nil
}

func (r *MemRecords) ListByBatch(_ context.Context, batchID string) ([]record.Record, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var out []record.Record
	for _, rec := range r.m.records {
		if rec.BatchID == batchID {
			out = append(out, r.joined(rec))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AssignedAgentID != out[j].AssignedAgentID {
			return out[i].AssignedAgentID < out[j].AssignedAgentID
		}
		return out[i].RowIndex < out[j].RowIndex
	})
	return out, nil
}

func (r *MemRecords) ListByAgent(_ context.Context, agentID int64, status record.Status) ([]record.Record, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var out []record.Record
	for _, rec := range r.m.records {
		if rec.AssignedAgentID != agentID {
			continue
		}
		if status != "" && rec.Status != status {
			continue
		}
		out = append(out, r.joined(rec))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		}
		return out[i].RowIndex < out[j].RowIndex
	})
	return out, nil
}

func (r *MemRecords) UpdateStatus(_ context.Context, id int64, status record.Status, notes *string, now time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i := range r.m.records {
		if r.m.records[i].ID == id {
			r.m.records[i].ApplyStatus(status, notes, now)
			r.m.records[i].UpdatedAt = now
			return nil
		}
	}
	return xerrors.ErrNotFound
}

func (r *MemRecords) CountAll(_ context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(len(r.m.records)), nil
}

func (r *MemRecords) CountByAgentAndStatus(_ context.Context) ([]record.StatusCount, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	type key struct {
		agentID int64
		status  record.Status
	}
	grouped := make(map[key]int64)
	for _, rec := range r.m.records {
		grouped[key{rec.AssignedAgentID, rec.Status}]++
	}

	out := make([]record.StatusCount, 0, len(grouped))
	for k, n := range grouped {
		a := r.m.agents[k.agentID]
		out = append(out, record.StatusCount{
			AgentID:    k.agentID,
			AgentName:  a.Name,
			AgentEmail: a.Email,
			Status:     k.status,
			Count:      n,
		})
	}
	return out, nil
}

// ========== admin repository ==========

type MemAdmins struct{ m *Memory }

func (r *MemAdmins) Create(_ context.Context, a *admin.Admin) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.admins {
		if existing.Email == a.Email {
			return xerrors.ErrDuplicateEntry
		}
	}
	r.m.nextAdminID++
	now := r.m.now()
	a.ID = r.m.nextAdminID
	a.CreatedAt, a.UpdatedAt = now, now
	r.m.admins[a.ID] = *a
	return nil
}

func (r *MemAdmins) FindByEmail(_ context.Context, email string) (*admin.Admin, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, a := range r.m.admins {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (r *MemAdmins) FindByID(_ context.Context, id int64) (*admin.Admin, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.admins[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return &a, nil
}

func (r *MemAdmins) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if errors.Is(err, xerrors.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *MemAdmins) SuperAdminExists(_ context.Context) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, a := range r.m.admins {
		if a.Role == admin.RoleSuperAdmin {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemAdmins) UpdateLastLogin(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.admins[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	now := r.m.now()
	a.LastLogin = &now
	r.m.admins[id] = a
	return nil
}

// ========== roster lock ==========

// MemLock serializes critical sections in process.
type MemLock struct {
	mu    sync.Mutex
	Calls int
}

func (l *MemLock) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Calls++
	return fn(ctx)
}

func page[T any](items []T, p, limit int) []T {
	p, limit = pagination.Normalize(p, limit)
	start := pagination.Offset(p, limit)
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
