package draftstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thesahilsinghh/shoppers/internal/domain"
)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    24 * time.Hour,
	}
}

// RedisStore keeps drafts under one well-known slot per user. A draft that
// sits unconfirmed for the full TTL is an abandoned checkout.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (s *RedisStore) Put(ctx context.Context, sessionKey string, draft domain.OrderDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft failed: %w", err)
	}
	if err := s.client.Set(ctx, slotKey(sessionKey), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sessionKey string) (domain.OrderDraft, error) {
	data, err := s.client.Get(ctx, slotKey(sessionKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.OrderDraft{}, ErrDraftNotFound
	}
	if err != nil {
		return domain.OrderDraft{}, fmt.Errorf("redis get failed: %w", err)
	}

	var draft domain.OrderDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return domain.OrderDraft{}, fmt.Errorf("unmarshal draft failed: %w", err)
	}
	return draft, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionKey string) error {
	if err := s.client.Del(ctx, slotKey(sessionKey)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func slotKey(sessionKey string) string {
	return fmt.Sprintf("pending_order:%s", sessionKey)
}
