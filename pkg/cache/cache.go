package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cardora/giftcard-market/pkg/logger"
	redisclient "github.com/cardora/giftcard-market/pkg/redis"
	"go.uber.org/zap"
)

// Manager handles caching operations with JSON serialization
type Manager struct {
	redis *redisclient.Client
}

// NewManager creates a new cache manager
func NewManager(redis *redisclient.Client) *Manager {
	return &Manager{redis: redis}
}

// Get retrieves a cached value and unmarshals it into result
func (m *Manager) Get(ctx context.Context, key string, result interface{}) error {
	data, err := m.redis.GetString(ctx, key)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(data), result)
}

// Set marshals and caches a value with expiration
func (m *Manager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return m.redis.SetWithExpiration(ctx, key, string(data), ttl)
}

// GetOrSet retrieves from cache or executes fn and caches the result
func (m *Manager) GetOrSet(ctx context.Context, key string, ttl time.Duration, result interface{}, fn func() (interface{}, error)) error {
	err := m.Get(ctx, key, result)
	if err == nil {
		return nil // Cache hit
	}

	// Cache miss - execute function
	data, err := fn()
	if err != nil {
		return err
	}

	// Cache the result without blocking the caller
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.Set(cacheCtx, key, data, ttl); err != nil {
			logger.Get().Warn("failed to cache value",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}()

	// Marshal the result into the result pointer
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return json.Unmarshal(jsonData, result)
}

// Delete removes a key from cache
func (m *Manager) Delete(ctx context.Context, keys ...string) error {
	return m.redis.Delete(ctx, keys...)
}

// Invalidate removes keys matching a pattern using SCAN
func (m *Manager) Invalidate(ctx context.Context, pattern string) error {
	var cursor uint64

	for {
		var keys []string
		var err error

		result := m.redis.Scan(ctx, cursor, pattern, 100)
		keys, cursor, err = result.Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			if err := m.redis.Delete(ctx, keys...); err != nil {
				return fmt.Errorf("failed to delete keys: %w", err)
			}
		}

		if cursor == 0 {
			break
		}
	}

	return nil
}

// CacheKeys defines common cache key patterns
type CacheKeys struct{}

var Keys = CacheKeys{}

// MerchantProfile returns cache key for a merchant API profile
func (k CacheKeys) MerchantProfile(userID string) string {
	return fmt.Sprintf("merchant:profile:%s", userID)
}

// SavedCards returns cache key for a merchant's saved card list
func (k CacheKeys) SavedCards(userID string) string {
	return fmt.Sprintf("merchant:cards:%s", userID)
}

// Product returns cache key for a gift card product
func (k CacheKeys) Product(productID string) string {
	return fmt.Sprintf("product:%s", productID)
}

// ProductList returns cache key for the product catalog page
func (k CacheKeys) ProductList(page, limit int) string {
	return fmt.Sprintf("products:page:%d:limit:%d", page, limit)
}

// Order returns cache key for an order snapshot
func (k CacheKeys) Order(orderID string) string {
	return fmt.Sprintf("order:%s", orderID)
}

// TTL defines common cache TTL durations
type CacheTTL struct{}

var TTL = CacheTTL{}

func (t CacheTTL) Short() time.Duration    { return 5 * time.Minute }
func (t CacheTTL) Medium() time.Duration   { return 15 * time.Minute }
func (t CacheTTL) Long() time.Duration     { return 1 * time.Hour }
func (t CacheTTL) VeryLong() time.Duration { return 24 * time.Hour }
