// Package redisstore persists agent sessions in Redis. Entries expire a fixed
// time after they were written.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
	"github.com/jrsteele09/lead-dashboard/sessions"
	"github.com/redis/go-redis/v9"
)

var _ sessions.Storage = (*Store)(nil)

const keyPrefix = "dashboard:session:"

// Connect initializes a Redis client from URL or host:port input.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Store keeps each session value under its own key with the TTL set on write.
// Reads leave the TTL alone, so a session expires ttl after login.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

// Key returns the Redis key holding one session value.
func Key(namespace, key string) string {
	return keyPrefix + namespace + ":" + key
}

func (s *Store) Get(ctx context.Context, namespace, key string) (string, error) {
	if err := sessions.ValidateLocation(namespace, key); err != nil {
		return "", err
	}
	value, err := s.client.Get(ctx, Key(namespace, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperrors.ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("[redisstore Get] %w", err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, namespace, key, value string) error {
	if err := sessions.ValidateLocation(namespace, key); err != nil {
		return err
	}
	if err := s.client.Set(ctx, Key(namespace, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("[redisstore Set] %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, namespace, key string) error {
	if err := sessions.ValidateLocation(namespace, key); err != nil {
		return err
	}
	if err := s.client.Del(ctx, Key(namespace, key)).Err(); err != nil {
		return fmt.Errorf("[redisstore Delete] %w", err)
	}
	return nil
}
