package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dukepan/linkpulse/internal/contextkey"
	"github.com/dukepan/linkpulse/internal/utils"
)

// RateLimiter implements a token bucket per authenticated user, backed by
// Redis so the budget is shared across replicas. Redis being unreachable
// never blocks a request; the limiter fails open.
type RateLimiter struct {
	redisClient *redis.Client
	capacity    int64   // maximum number of tokens the bucket can hold
	rate        float64 // tokens added per second
}

// NewRateLimiter creates a RateLimiter with the given bucket parameters.
func NewRateLimiter(redisClient *redis.Client, capacity int64, rate float64) *RateLimiter {
	return &RateLimiter{
		redisClient: redisClient,
		capacity:    capacity,
		rate:        rate,
	}
}

// Middleware applies rate limiting to requests that carry an authenticated
// user. It must run after the auth middleware.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		userID, ok := req.Context().Value(contextkey.ContextKeyUserID).(uuid.UUID)
		if !ok || userID == uuid.Nil {
			utils.RespondError(w, http.StatusUnauthorized, "user ID not found in context")
			return
		}

		if !rl.Allow(req.Context(), userID.String()) {
			utils.RespondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, req)
	})
}

// Allow consumes one token from the caller's bucket and reports whether the
// request may proceed.
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	redisKey := fmt.Sprintf("rate_limit:%s", key)

	val, err := rl.redisClient.HMGet(ctx, redisKey, "tokens", "last_refill").Result()
	if err != nil {
		slog.Warn("rate limiter: failed to read bucket, allowing request", "error", err)
		return true
	}

	tokens := rl.capacity
	lastRefill := time.Now()
	if val[0] != nil && val[1] != nil {
		if t, err := strconv.ParseFloat(val[0].(string), 64); err == nil {
			tokens = int64(t)
		}
		if t, err := time.Parse(time.RFC3339Nano, val[1].(string)); err == nil {
			lastRefill = t
		}
	}

	now := time.Now()
	refilled := int64(now.Sub(lastRefill).Seconds() * rl.rate)
	tokens = int64(math.Min(float64(rl.capacity), float64(tokens+refilled)))

	if tokens < 1 {
		return false
	}

	tokens--
	_, err = rl.redisClient.HMSet(ctx, redisKey, "tokens", tokens, "last_refill", now.Format(time.RFC3339Nano)).Result()
	if err != nil {
		slog.Warn("rate limiter: failed to write bucket, allowing request", "error", err)
	}
	return true
}
