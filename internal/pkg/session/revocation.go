// internal/pkg/session/revocation.go
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revocations remembers logged-out access tokens until they expire. With a
// nil client every call is a no-op and no token is ever revoked.
type Revocations struct {
	client redis.UniversalClient
	prefix string
}

func NewRevocations(client redis.UniversalClient) *Revocations {
	return &Revocations{client: client, prefix: "killbill:revoked:"}
}

// Revoke marks jti as logged out until expiresAt.
func (r *Revocations) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if r.client == nil || jti == "" {
		return nil
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// already expired
		return nil
	}

	if err := r.client.Set(ctx, r.prefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti was logged out.
func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r.client == nil || jti == "" {
		return false, nil
	}

	n, err := r.client.Exists(ctx, r.prefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}
