// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: persist/redis.go
// Summary: Redis-backed sink so several hosts can share one saved layout.

package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSink stores values as plain string keys under a prefix.
type RedisSink struct {
	client *redis.Client
	prefix string
	owned  bool
}

// NewRedisSink wraps an existing client. The caller keeps ownership.
func NewRedisSink(client *redis.Client, prefix string) *RedisSink {
	return &RedisSink{client: client, prefix: prefix}
}

// DialRedisSink connects to addr and verifies the server answers.
func DialRedisSink(ctx context.Context, addr string, db int, prefix string) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("persist: redis ping %s: %w", addr, err)
	}
	return &RedisSink{client: client, prefix: prefix, owned: true}, nil
}

func (s *RedisSink) key(key string) string {
	return s.prefix + key
}

func (s *RedisSink) Save(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("persist: redis set %q: %w", key, err)
	}
	return nil
}

func (s *RedisSink) Load(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("persist: redis get %q: %w", key, err)
	}
	return value, nil
}

// Close closes the client if the sink dialed it.
func (s *RedisSink) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
