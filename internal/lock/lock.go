package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrLockHeld is returned when another invocation owns the lock
var ErrLockHeld = errors.New("lock held by another invocation")

// Locker guards the read-last/select-next/write sequence across processes
type Locker interface {
	// Acquire takes the lock. The returned release func must be called on every exit path.
	Acquire(ctx context.Context) (release func(), err error)
}

// releaseScript deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock implements Locker with SET NX PX
type RedisLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisLock creates a Redis-backed lock. The TTL bounds how long a crashed
// holder can block later invocations.
func NewRedisLock(client *redis.Client, key string, ttl time.Duration) *RedisLock {
	return &RedisLock{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

// Acquire takes the lock or returns ErrLockHeld
func (l *RedisLock) Acquire(ctx context.Context) (func(), error) {
	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate lock token: %w", err)
	}

	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", l.key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	log.Debug().Str("key", l.key).Dur("ttl", l.ttl).Msg("Lock acquired")

	release := func() {
		// Release must not depend on the caller's context being alive.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
			log.Warn().Err(err).Str("key", l.key).Msg("Failed to release lock")
			return
		}
		log.Debug().Str("key", l.key).Msg("Lock released")
	}

	return release, nil
}

// Nop is a Locker that always succeeds
type Nop struct{}

// Acquire always succeeds
func (Nop) Acquire(context.Context) (func(), error) {
	return func() {}, nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
