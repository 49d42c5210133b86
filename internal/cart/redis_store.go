package cart

import (
	"context"
	"encoding/json"
	"time"

	"bodega-pos/internal/ledger"

	redis "github.com/redis/go-redis/v9"
)

// RedisStore keeps carts as JSON values with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, operatorID string, kind ledger.Kind) (*Cart, error) {
	val, err := s.client.Get(ctx, key(operatorID, kind)).Bytes()
	if err == redis.Nil {
		return New(kind), nil
	}
	if err != nil {
		return nil, err
	}

	c := New(kind)
	if err := json.Unmarshal(val, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *RedisStore) Save(ctx context.Context, operatorID string, c *Cart) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key(operatorID, c.Kind()), payload, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, operatorID string, kind ledger.Kind) error {
	return s.client.Del(ctx, key(operatorID, kind)).Err()
}
