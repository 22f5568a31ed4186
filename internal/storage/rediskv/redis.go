package rediskv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Backend keeps each collection as one string key.
type Backend struct {
	client *redis.Client
	prefix string
}

func New(redisAddr, prefix string) (*Backend, error) {
	const op = "storage.rediskv.New"

	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Backend{client: client, prefix: prefix}, nil
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const op = "storage.rediskv.Get"

	data, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	return data, true, nil
}

func (b *Backend) Set(ctx context.Context, key string, data []byte) error {
	const op = "storage.rediskv.Set"

	if err := b.client.Set(ctx, b.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (b *Backend) Close() error {
	return b.client.Close()
}
