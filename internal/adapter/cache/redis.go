package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"canasta/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "quotes:"

// RedisAdapter keeps quotation sets as JSON under quotes:<normalized key>
// and lets Redis expire them.
type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisOption tunes the client before it connects.
type RedisOption func(*redis.Options)

// WithPool sets the connection pool size and idle floor. Zero keeps the
// client default.
func WithPool(size, minIdle int) RedisOption {
	return func(o *redis.Options) {
		o.PoolSize = size
		o.MinIdleConns = minIdle
	}
}

func NewRedisAdapter(addr, password string, db int, ttl time.Duration, opts ...RedisOption) (*RedisAdapter, error) {
	options := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	for _, opt := range opts {
		opt(options)
	}
	client := redis.NewClient(options)

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisAdapter{
		client: client,
		ttl:    ttl,
	}, nil
}

func (a *RedisAdapter) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}

func (a *RedisAdapter) Get(ctx context.Context, key string) ([]model.Quotation, bool, error) {
	data, err := a.client.Get(ctx, keyPrefix+model.NormalizeKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get quotations from redis: %w", err)
	}

	var quotes []model.Quotation
	if err := json.Unmarshal(data, &quotes); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal quotations: %w", err)
	}
	return quotes, true, nil
}

func (a *RedisAdapter) Put(ctx context.Context, key string, quotes []model.Quotation, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = a.ttl
	}
	data, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("failed to marshal quotations: %w", err)
	}

	if err := a.client.Set(ctx, keyPrefix+model.NormalizeKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set quotations in redis: %w", err)
	}
	return nil
}

func (a *RedisAdapter) Close() error {
	return a.client.Close()
}
