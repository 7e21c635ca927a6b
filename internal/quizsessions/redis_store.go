package quizsessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "cybercase:quiz:"

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to addr and checks it answers before returning.
func NewRedisStore(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisStoreWithClient(client, ttl), nil
}

func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Put(ctx context.Context, playerID string, questionIDs []int) error {
	if questionIDs == nil {
		questionIDs = []int{}
	}
	payload, err := json.Marshal(questionIDs)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(playerID), payload, s.ttl).Err()
}

func (s *RedisStore) Take(ctx context.Context, playerID string) ([]int, error) {
	raw, err := s.client.GetDel(ctx, sessionKey(playerID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoActiveQuiz
	}
	if err != nil {
		return nil, err
	}

	var ids []int
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode quiz session: %w", err)
	}
	return ids, nil
}

func sessionKey(playerID string) string {
	return keyPrefix + playerID
}
