// internal/pkg/session/denylist.go
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist remembers signed-out token ids until the tokens expire on their own.
type Denylist struct {
	client redis.UniversalClient
}

func NewDenylist(client redis.UniversalClient) *Denylist {
	return &Denylist{client: client}
}

func (d *Denylist) key(jti string) string {
	return fmt.Sprintf("blacklist:token:%s", jti)
}

// Revoke denies jti for ttl. Non-positive ttls are ignored, the token is already dead.
func (d *Denylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, d.key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti was signed out.
func (d *Denylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := d.client.Get(ctx, d.key(jti)).Err()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to check token: %w", err)
	default:
		return true, nil
	}
}
