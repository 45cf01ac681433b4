package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"raffler/domain/entities"
	"raffler/domain/interfaces"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// releaseScript deletes the lock only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisDrawLocker serializes settlement of a draw across service instances
type RedisDrawLocker struct {
	client    redis.UniversalClient
	ttl       time.Duration
	maxWait   time.Duration
	retryWait time.Duration
	keyPrefix string
}

// NewRedisDrawLocker creates a locker whose locks expire after ttl if never released
func NewRedisDrawLocker(client redis.UniversalClient, ttl, maxWait time.Duration) *RedisDrawLocker {
	return &RedisDrawLocker{
		client:    client,
		ttl:       ttl,
		maxWait:   maxWait,
		retryWait: 100 * time.Millisecond,
		keyPrefix: "raffler:draw-lock:",
	}
}

// Key returns the Redis key guarding a draw
func (l *RedisDrawLocker) Key(drawID int64) string {
	return fmt.Sprintf("%s%d", l.keyPrefix, drawID)
}

// Lock acquires the draw lock with SET NX PX, retrying until maxWait elapses
func (l *RedisDrawLocker) Lock(ctx context.Context, drawID int64) (func(), error) {
	key := l.Key(drawID)
	token := uuid.NewString()

	deadline := time.Now().Add(l.maxWait)
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock for draw %d: %w", drawID, err)
		}
		if ok {
			break
		}
		if l.maxWait <= 0 || time.Now().After(deadline) {
			return nil, entities.ErrSettlementInProgress
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryWait):
		}
	}

	return func() {
		// Released on a fresh context so a cancelled request still frees the lock
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		deleted, err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Int()
		if err != nil && !errors.Is(err, redis.Nil) {
			log.WithError(err).WithField("draw_id", drawID).Warn("Failed to release draw lock")
			return
		}
		if deleted == 0 {
			log.WithField("draw_id", drawID).Warn("Draw lock expired before release")
		}
	}, nil
}

var _ interfaces.DrawLocker = (*RedisDrawLocker)(nil)
