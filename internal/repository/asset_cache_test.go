package repository

import (
	"context"
	"testing"
	"time"

	redisapp "user_hub/internal/storage/redis"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockCache(t *testing.T) (*RedisURLCache, redismock.ClientMock) {
	t.Helper()

	db, mock := redismock.NewClientMock()
	cache := NewRedisURLCache(&redisapp.Client{Client: db})

	return cache, mock
}

func TestRedisURLCache_SetAndGet(t *testing.T) {
	cache, mock := newMockCache(t)
	ctx := context.Background()

	mock.ExpectSet("avatar_url:avatars/1/pic.png", "https://signed.example/pic", 14*time.Minute).
		SetVal("OK")

	err := cache.Set(ctx, "avatars/1/pic.png", "https://signed.example/pic", 14*time.Minute)
	require.NoError(t, err)

	mock.ExpectGet("avatar_url:avatars/1/pic.png").SetVal("https://signed.example/pic")

	url, err := cache.Get(ctx, "avatars/1/pic.png")
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/pic", url)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisURLCache_Miss(t *testing.T) {
	cache, mock := newMockCache(t)

	mock.ExpectGet("avatar_url:missing").RedisNil()

	url, err := cache.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, url)
}
