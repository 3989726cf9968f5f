package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukepan/linkpulse/internal/contextkey"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRateLimiterAllowsUpToCapacity(t *testing.T) {
	rl := NewRateLimiter(newTestRedis(t), 3, 0)
	ctx := context.Background()

	for i := range 3 {
		assert.True(t, rl.Allow(ctx, "alice"), "request %d within burst", i)
	}
	assert.False(t, rl.Allow(ctx, "alice"))
}

func TestRateLimiterBucketsArePerUser(t *testing.T) {
	rl := NewRateLimiter(newTestRedis(t), 1, 0)
	ctx := context.Background()

	require.True(t, rl.Allow(ctx, "alice"))
	assert.False(t, rl.Allow(ctx, "alice"))
	assert.True(t, rl.Allow(ctx, "bob"))
}

func TestRateLimiterFailsOpenWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	rl := NewRateLimiter(client, 1, 0)
	assert.True(t, rl.Allow(context.Background(), "alice"))
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(newTestRedis(t), 1, 0)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("rejects unauthenticated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("enforces the budget", func(t *testing.T) {
		userID := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req = req.WithContext(context.WithValue(req.Context(), contextkey.ContextKeyUserID, userID))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}
