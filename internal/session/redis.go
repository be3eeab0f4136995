package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "fitlg:wizard:"

// Redis keeps sessions in Redis, shared by every instance behind a load
// balancer. Expiry is left to Redis.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to addr and checks the connection.
func NewRedis(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis %s: %w", addr, err)
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (r *Redis) Load(ctx context.Context, id string) ([]byte, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return data, nil
}

func (r *Redis) Save(ctx context.Context, id string, data []byte) error {
	if err := r.client.Set(ctx, redisKeyPrefix+id, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
