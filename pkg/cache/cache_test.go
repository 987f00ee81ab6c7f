package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	redisclient "github.com/cardora/giftcard-market/pkg/redis"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileSnapshot struct {
	UserID   string  `json:"user_id"`
	Balance  float64 `json:"balance"`
	IsActive bool    `json:"is_active"`
}

func newTestManager(t *testing.T) (*Manager, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	return NewManager(&redisclient.Client{Client: client}), mock
}

func TestManagerGetHit(t *testing.T) {
	manager, mock := newTestManager(t)
	ctx := context.Background()

	key := Keys.MerchantProfile("user-1")
	mock.ExpectGet(key).SetVal(`{"user_id":"user-1","balance":150.5,"is_active":true}`)

	var result profileSnapshot
	err := manager.Get(ctx, key, &result)
	require.NoError(t, err)
	assert.Equal(t, "user-1", result.UserID)
	assert.Equal(t, 150.5, result.Balance)
	assert.True(t, result.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerGetMiss(t *testing.T) {
	manager, mock := newTestManager(t)
	ctx := context.Background()

	key := Keys.Product("prod-1")
	mock.ExpectGet(key).RedisNil()

	var result profileSnapshot
	err := manager.Get(ctx, key, &result)
	assert.Error(t, err)
}

func TestManagerGetInvalidJSON(t *testing.T) {
	manager, mock := newTestManager(t)
	ctx := context.Background()

	key := Keys.Product("prod-1")
	mock.ExpectGet(key).SetVal("not json")

	var result profileSnapshot
	err := manager.Get(ctx, key, &result)
	assert.Error(t, err)
}

func TestManagerSet(t *testing.T) {
	manager, mock := newTestManager(t)
	ctx := context.Background()

	key := Keys.MerchantProfile("user-1")
	snapshot := profileSnapshot{UserID: "user-1", Balance: 20, IsActive: true}
	mock.ExpectSet(key, `{"user_id":"user-1","balance":20,"is_active":true}`, time.Hour).SetVal("OK")

	err := manager.Set(ctx, key, snapshot, time.Hour)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerGetOrSetHitSkipsLoader(t *testing.T) {
	manager, mock := newTestManager(t)
	ctx := context.Background()

	key := Keys.Product("prod-1")
	mock.ExpectGet(key).SetVal(`{"user_id":"cached"}`)

	loaderCalled := false
	var result profileSnapshot
	err := manager.GetOrSet(ctx, key, time.Minute, &result, func() (interface{}, error) {
		loaderCalled = true
		return nil, errors.New("should not be called")
	})

	require.NoError(t, err)
	assert.False(t, loaderCalled)
	assert.Equal(t, "cached", result.UserID)
}

func TestManagerGetOrSetMissInvokesLoader(t *testing.T) {
	manager, mock := newTestManager(t)
	ctx := context.Background()

	key := Keys.Product("prod-2")
	mock.ExpectGet(key).RedisNil()
	mock.Regexp().ExpectSet(key, `.*`, time.Minute).SetVal("OK")

	var result profileSnapshot
	err := manager.GetOrSet(ctx, key, time.Minute, &result, func() (interface{}, error) {
		return profileSnapshot{UserID: "fresh", Balance: 9.99}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "fresh", result.UserID)
	assert.Equal(t, 9.99, result.Balance)
}

func TestManagerGetOrSetLoaderError(t *testing.T) {
	manager, mock := newTestManager(t)
	ctx := context.Background()

	key := Keys.Product("prod-3")
	mock.ExpectGet(key).RedisNil()

	var result profileSnapshot
	err := manager.GetOrSet(ctx, key, time.Minute, &result, func() (interface{}, error) {
		return nil, errors.New("upstream down")
	})

	assert.EqualError(t, err, "upstream down")
}

func TestManagerDelete(t *testing.T) {
	manager, mock := newTestManager(t)
	ctx := context.Background()

	mock.ExpectDel("merchant:profile:user-1", "merchant:cards:user-1").SetVal(2)

	err := manager.Delete(ctx, "merchant:profile:user-1", "merchant:cards:user-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "merchant:profile:u1", Keys.MerchantProfile("u1"))
	assert.Equal(t, "merchant:cards:u1", Keys.SavedCards("u1"))
	assert.Equal(t, "product:p1", Keys.Product("p1"))
	assert.Equal(t, "products:page:2:limit:20", Keys.ProductList(2, 20))
	assert.Equal(t, "order:o1", Keys.Order("o1"))
}

func TestCacheTTLPresets(t *testing.T) {
	assert.Equal(t, 5*time.Minute, TTL.Short())
	assert.Equal(t, 15*time.Minute, TTL.Medium())
	assert.Equal(t, time.Hour, TTL.Long())
	assert.Equal(t, 24*time.Hour, TTL.VeryLong())
}
