package authstate

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStorage persists the state snapshot in Redis under a single key.
// Intended for headless deployments (shared workers, CLI agents) where the
// client session must survive process restarts on different hosts.
type RedisStorage struct {
	client    *redis.Client
	prefix    string
	sessionID string
}

// NewRedisStorage creates a [RedisStorage]. sessionID isolates independent
// client sessions under the same prefix; it must be non-empty.
func NewRedisStorage(client *redis.Client, prefix, sessionID string) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix, sessionID: sessionID}
}

func (r *RedisStorage) key() string {
	return r.prefix + ":state:" + r.sessionID
}

// Load implements [Storage].
func (r *RedisStorage) Load(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoState
	}
	return data, nil
}

// Save implements [Storage]. Snapshots carry no TTL: expiry of the access
// token inside is the backend's concern, revalidation the store's.
func (r *RedisStorage) Save(ctx context.Context, snapshot []byte) error {
	return r.client.Set(ctx, r.key(), snapshot, 0).Err()
}

// Clear implements [Storage].
func (r *RedisStorage) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key()).Err()
}
