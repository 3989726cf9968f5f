package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukepan/linkpulse/internal/models"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewWithClient(client)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestCacheLinkRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.CacheLink(ctx, "go", "https://go.dev", time.Hour))

	target, err := c.GetLink(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, "https://go.dev", target)
}

func TestGetLinkMissIsNotAnError(t *testing.T) {
	c, _ := newTestCache(t)

	target, err := c.GetLink(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, "", target)
}

func TestInvalidateLink(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.CacheLink(ctx, "go", "https://go.dev", time.Hour))
	require.NoError(t, c.InvalidateLink(ctx, "go"))

	target, err := c.GetLink(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, "", target)
}

func TestDrainClicksTakesAndClears(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.IncrClick(ctx, "go"))
	require.NoError(t, c.IncrClick(ctx, "go"))
	require.NoError(t, c.IncrClick(ctx, "docs"))

	counts, err := c.DrainClicks(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"go": 2, "docs": 1}, counts)

	counts, err = c.DrainClicks(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestPublishClickDeliversToSubscribers(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	sub := c.SubscribeClicks(ctx)
	defer sub.Close()
	_, err := sub.Receive(ctx) // wait for the subscription confirmation
	require.NoError(t, err)

	ev := &models.ClickEvent{Slug: "go", Referrer: "https://example.com", OccurredAt: time.Now().UTC()}
	require.NoError(t, c.PublishClick(ctx, ev))

	raw, err := sub.ReceiveTimeout(ctx, time.Second)
	require.NoError(t, err)
	msg, ok := raw.(*redis.Message)
	require.True(t, ok)

	got := &models.ClickEvent{}
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), got))
	assert.Equal(t, "go", got.Slug)
	assert.Equal(t, "https://example.com", got.Referrer)
}
