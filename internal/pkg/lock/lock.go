// Package lock guards jobs that must not overlap across processes.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// ErrHeld is returned when another holder owns the lock.
var ErrHeld = errors.New("lock is held by another process")

// Locker acquires a named lock. The returned release func is safe to call
// more than once.
type Locker interface {
	Acquire(ctx context.Context, name string) (release func(context.Context) error, err error)
}

// releaseScript deletes the key only when it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, prefix: "killbill:lock:", ttl: ttl}
}

func (l *RedisLocker) Acquire(ctx context.Context, name string) (func(context.Context) error, error) {
	key := l.prefix + name
	token := ulid.Make().String()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	if !ok {
		return nil, ErrHeld
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lock %s: %w", name, err)
		}
		return nil
	}, nil
}

type noopLocker struct{}

// Noop always succeeds. Used when no Redis is configured.
func Noop() Locker { return noopLocker{} }

func (noopLocker) Acquire(context.Context, string) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}
