package redis

import (
	"context"
	"testing"
	"time"

	"agent-payment-gateway/internal/core/ports"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyCache_SetAndGet(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewIdempotencyCache(client)
	ctx := context.Background()

	route := "POST /api/v1/payments"
	key := "agent-123-req-001"
	stored := &ports.StoredResponse{
		StatusCode: 201,
		Body:       []byte(`{"data":{"payment_id":"abc","status":"PENDING"}}`),
	}

	// Get before set => nil
	result, err := cache.Get(ctx, route, key)
	assert.NoError(t, err)
	assert.Nil(t, result)

	// Set
	err = cache.Set(ctx, route, key, stored, 24*time.Hour)
	require.NoError(t, err)

	// Get after set
	result, err = cache.Get(ctx, route, key)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, stored.StatusCode, result.StatusCode)
	assert.Equal(t, stored.Body, result.Body)
}

func TestIdempotencyCache_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewIdempotencyCache(client)
	ctx := context.Background()

	route := "POST /api/v1/wallets/topup"
	key := "agent-456-req-002"

	err := cache.Set(ctx, route, key, &ports.StoredResponse{StatusCode: 200, Body: []byte(`{}`)}, 1*time.Second)
	require.NoError(t, err)

	// Fast-forward time in miniredis
	s.FastForward(2 * time.Second)

	result, err := cache.Get(ctx, route, key)
	assert.NoError(t, err)
	assert.Nil(t, result, "expired entry should return nil")
}

func TestIdempotencyCache_RouteScoping(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewIdempotencyCache(client)
	ctx := context.Background()

	key := "shared-key"

	err := cache.Set(ctx, "POST /api/v1/payments", key,
		&ports.StoredResponse{StatusCode: 201, Body: []byte(`{"route":"payments"}`)}, time.Hour)
	require.NoError(t, err)

	// Same key on a different route is a distinct entry.
	result, err := cache.Get(ctx, "POST /api/v1/wallets/topup", key)
	assert.NoError(t, err)
	assert.Nil(t, result)

	result, err = cache.Get(ctx, "POST /api/v1/payments", key)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 201, result.StatusCode)
}

func TestIdempotencyCache_OverwriteKey(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewIdempotencyCache(client)
	ctx := context.Background()

	route := "POST /api/v1/payments"
	key := "agent-789-req-003"

	err := cache.Set(ctx, route, key, &ports.StoredResponse{StatusCode: 201, Body: []byte("first")}, time.Hour)
	require.NoError(t, err)

	err = cache.Set(ctx, route, key, &ports.StoredResponse{StatusCode: 201, Body: []byte("second")}, time.Hour)
	require.NoError(t, err)

	result, err := cache.Get(ctx, route, key)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, []byte("second"), result.Body)
}
