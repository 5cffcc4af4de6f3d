// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps keys in Redis under "<namespace>:".
type RedisStore struct {
	client    *redis.Client
	namespace string
	timeout   time.Duration
}

// OpenRedis connects to url and verifies the connection with PING.
func OpenRedis(url, namespace string, timeout time.Duration) (*RedisStore, error) {
	if url == "" {
		return nil, errors.New("storage: redis driver requires a URL")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	s := NewRedisStore(redis.NewClient(opts), namespace, timeout)

	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return s, nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, namespace string, timeout time.Duration) *RedisStore {
	if namespace == "" {
		namespace = "studentconnect"
	}
	if timeout <= 0 {
		timeout = DefaultOpTimeout
	}
	return &RedisStore{client: client, namespace: namespace, timeout: timeout}
}

func (s *RedisStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *RedisStore) key(k string) string {
	return s.namespace + ":" + k
}

// Get implements Store.
func (s *RedisStore) Get(key string) (string, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	v, err := s.client.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", key, err)
	}
	return v, nil
}

// Set implements Store.
func (s *RedisStore) Set(key, value string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// Remove implements Store.
func (s *RedisStore) Remove(key string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) scan(ctx context.Context) ([]string, error) {
	var (
		cursor uint64
		found  []string
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.namespace+":*", 100).Result()
		if err != nil {
			return nil, err
		}
		found = append(found, keys...)
		if next == 0 {
			return found, nil
		}
		cursor = next
	}
}

// Keys implements Store.
func (s *RedisStore) Keys() ([]string, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	raw, err := s.scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, strings.TrimPrefix(k, s.namespace+":"))
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear implements Store. Only keys in this store's namespace are removed.
func (s *RedisStore) Clear() error {
	ctx, cancel := s.ctx()
	defer cancel()

	keys, err := s.scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
