// Package cache provides a redis-backed read cache for account
// lookups. Balances change only through the ledger service, which
// invalidates the cached account on every mutation, so a cache hit is
// at worst as stale as the last committed write.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cajero/internal/models"

	"github.com/redis/go-redis/v9"
)

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Get reads key into dest and reports whether it was present.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func accountKey(number string) string {
	return fmt.Sprintf("account:number:%s", number)
}

// GetAccount returns the cached account for a number, or nil on miss.
func (s *CacheService) GetAccount(ctx context.Context, number string) *models.Account {
	var account models.Account
	found, err := s.Get(ctx, accountKey(number), &account)
	if err != nil || !found {
		return nil
	}
	return &account
}

func (s *CacheService) SetAccount(ctx context.Context, account *models.Account) error {
	if account == nil {
		return errors.New("cannot cache nil account")
	}
	return s.Set(ctx, accountKey(account.Number), account)
}

func (s *CacheService) InvalidateAccount(ctx context.Context, number string) error {
	return s.Delete(ctx, accountKey(number))
}

func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

func (s *CacheService) Close() error {
	return s.client.Close()
}
