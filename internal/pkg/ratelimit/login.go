// internal/pkg/ratelimit/login.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter counts failed login attempts per ip and email in a fixed window.
type LoginLimiter struct {
	client      redis.UniversalClient
	maxAttempts int64
	window      time.Duration
}

func NewLoginLimiter(client redis.UniversalClient, maxAttempts int64, window time.Duration) *LoginLimiter {
	return &LoginLimiter{client: client, maxAttempts: maxAttempts, window: window}
}

func loginKey(ip, email string) string {
	return fmt.Sprintf("ratelimit:login:%s:%s", ip, email)
}

// CheckLoginAttempt records an attempt and reports whether it is allowed and how many remain.
func (l *LoginLimiter) CheckLoginAttempt(ctx context.Context, ip, email string) (bool, int64, error) {
	key := loginKey(ip, email)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment login attempt: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("failed to set login window: %w", err)
		}
	}

	remaining := l.maxAttempts - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= l.maxAttempts, remaining, nil
}

// ResetLoginAttempts clears the counter after a successful login.
func (l *LoginLimiter) ResetLoginAttempts(ctx context.Context, ip, email string) error {
	return l.client.Del(ctx, loginKey(ip, email)).Err()
}
