package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/redis"
)

// RedisStore keeps session carts in Redis as JSON blobs under a namespaced
// key, bounded by a TTL so abandoned carts expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a Store backed by the shared Redis client.
func NewRedisStore(client *redis.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (map[uuid.UUID]int, error) {
	raw, err := s.client.Get(ctx, s.client.CartKey(sessionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return map[uuid.UUID]int{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	var keyed map[string]int
	if err := json.Unmarshal([]byte(raw), &keyed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding cart")
	}
	entries := make(map[uuid.UUID]int, len(keyed))
	for key, qty := range keyed {
		id, err := uuid.Parse(key)
		if err != nil {
			continue
		}
		entries[id] = qty
	}
	return entries, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, entries map[uuid.UUID]int) error {
	if len(entries) == 0 {
		return s.Clear(ctx, sessionID)
	}
	keyed := make(map[string]int, len(entries))
	for id, qty := range entries {
		keyed[id.String()] = qty
	}
	payload, err := json.Marshal(keyed)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart")
	}
	if err := s.client.Set(ctx, s.client.CartKey(sessionID), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.client.CartKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
	}
	return nil
}
