// internal/domain/distribution/store.go
package distribution

import (
	"context"

	"leaddist-service/internal/domain/agent"
	"leaddist-service/internal/domain/record"
)

// TxStore is the set of writes a distribution performs inside one transaction.
type TxStore interface {
	// LockActiveAgents returns up to limit active agents, least loaded first
	// (ties by id), locked for the rest of the transaction.
	LockActiveAgents(ctx context.Context, limit int) ([]agent.Agent, error)
	InsertRecords(ctx context.Context, records []record.Record) error
	IncrementAssignedCount(ctx context.Context, agentID int64, delta int64) error
}

// Store runs fn in a transaction, committing only when fn returns nil.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error
}

// RosterLock serialises every read-then-write of agent load counters.
type RosterLock interface {
	WithLock(ctx context.Context, fn func(ctx context.Context) error) error
}
