// internal/pkg/session/rate_limiter.go
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	maxLoginAttempts = 5
	loginWindow      = 15 * time.Minute
)

// RateLimiter counts login attempts per IP and email. With a
// nil client every attempt is allowed.
type RateLimiter struct {
	client redis.UniversalClient
}

func NewRateLimiter(client redis.UniversalClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func loginKey(ip, email string) string {
	return fmt.Sprintf("killbill:ratelimit:login:%s:%s", ip, email)
}

// CheckLoginAttempt counts one attempt and reports whether it is allowed,
// with the attempts left in the window.
func (r *RateLimiter) CheckLoginAttempt(ctx context.Context, ip, email string) (bool, int64, error) {
	if r.client == nil {
		return true, maxLoginAttempts, nil
	}

	key := loginKey(ip, email)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment login attempt: %w", err)
	}

	// Set expiration on first attempt
	if count == 1 {
		if err := r.client.Expire(ctx, key, loginWindow).Err(); err != nil {
			return false, 0, fmt.Errorf("failed to set login attempt window: %w", err)
		}
	}

	remaining := max(maxLoginAttempts-count, 0)
	return count <= maxLoginAttempts, remaining, nil
}

// ResetLoginAttempts clears the counter after a successful login.
func (r *RateLimiter) ResetLoginAttempts(ctx context.Context, ip, email string) error {
	if r.client == nil {
		return nil
	}
	return r.client.Del(ctx, loginKey(ip, email)).Err()
}
