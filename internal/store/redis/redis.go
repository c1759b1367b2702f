// Package redis stores streak snapshots in a Redis hash.
package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// DefaultKey is the hash holding member_id -> streak.
const DefaultKey = "streaks"

// Options configures the connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// Redis provides storage in a single Redis hash.
type Redis struct {
	cli *redis.Client
	key string
}

// Connect connects to the Redis server and pings the server to ensure the
// connection is working.
func Connect(ctx context.Context, opts Options) (*Redis, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		cli.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}
	return &Redis{
		cli: cli,
		key: key,
	}, nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.cli.Close()
}

// ReadStreaks returns every field of the hash.
func (r *Redis) ReadStreaks(ctx context.Context) (map[string]int, error) {
	vals, err := r.cli.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall: %w", err)
	}

	out := make(map[string]int, len(vals))
	for id, v := range vals {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("hgetall: field %s: %w", id, err)
		}
		out[id] = n
	}
	return out, nil
}

// WriteStreaks sets every member of the batch with one HSET, which Redis
// applies atomically.
func (r *Redis) WriteStreaks(ctx context.Context, streaks map[string]int) error {
	if len(streaks) == 0 {
		return nil
	}

	fields := make(map[string]interface{}, len(streaks))
	for id, s := range streaks {
		fields[id] = s
	}
	if err := r.cli.HSet(ctx, r.key, fields).Err(); err != nil {
		return fmt.Errorf("hset: %w", err)
	}
	return nil
}
