// internal/pkg/lock/roster.go
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RosterKey guards the agent roster and its load counters.
const RosterKey = "lock:agent-roster"

// RosterLock runs critical sections that read and then write agent load counters.
type RosterLock struct {
	client redis.UniversalClient
	ttl    time.Duration
	wait   time.Duration
	logger *zap.Logger
}

func NewRosterLock(client redis.UniversalClient, ttl, wait time.Duration, logger *zap.Logger) *RosterLock {
	return &RosterLock{client: client, ttl: ttl, wait: wait, logger: logger}
}

// WithLock holds the roster lock for the duration of fn. The lease is renewed
// every ttl/3; if a renewal fails the context passed to fn is cancelled.
func (r *RosterLock) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	locker := NewLocker(r.client, RosterKey, uuid.NewString())
	if err := locker.WaitLock(ctx, r.ttl, r.wait); err != nil {
		return fmt.Errorf("failed to acquire roster lock: %w", err)
	}

	defer func() {
		// release even when ctx was cancelled mid-fn
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := locker.Unlock(unlockCtx); err != nil {
			r.logger.Warn("roster lock release failed", zap.Error(err))
		}
	}()

	fnCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	done := make(chan struct{})
	renewed := make(chan struct{})
	go func() {
		defer close(renewed)
		r.renew(fnCtx, locker, done, cancel)
	}()

	err := fn(fnCtx)
	close(done)
	<-renewed
	if err != nil {
		return err
	}
	if cause := context.Cause(fnCtx); errors.Is(cause, ErrNotAcquired) {
		return cause
	}
	return nil
}

func (r *RosterLock) renew(ctx context.Context, locker *Locker, done <-chan struct{}, cancel context.CancelCauseFunc) {
	interval := r.ttl / 3
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := locker.Extend(ctx, r.ttl); err != nil {
				r.logger.Error("roster lock renewal failed", zap.Error(err))
				cancel(fmt.Errorf("%w: roster lock lease lost: %v", ErrNotAcquired, err))
				return
			}
		}
	}
}
