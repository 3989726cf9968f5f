package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/dukepan/linkpulse/internal/models"
)

var (
	redisLatency metric.Float64Histogram
)

const (
	linkKeyPrefix = "link:"
	clicksHashKey = "clicks:pending"
	// ClickChannel is the pub/sub channel carrying live click events to
	// websocket subscribers.
	ClickChannel = "clicks:live"
)

type Cache struct {
	client *redis.Client
}

// New creates a new Redis cache connection
func New(dsn string) (*Cache, error) {
	var err error

	meter := otel.Meter("redis-client")
	redisLatency, err = meter.Float64Histogram("redis.command.latency", metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("failed to create redis.command.latency instrument: %w", err)
	}

	opt, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, span := otel.Tracer("redis-client").Start(context.Background(), "redis.ping")
	defer span.End()
	if err := client.Ping(ctx).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to ping Redis")
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	span.SetStatus(codes.Ok, "Redis connected successfully")

	return &Cache{client: client}, nil
}

// NewWithClient wraps an existing client. Used by tests with miniredis.
func NewWithClient(client *redis.Client) *Cache {
	if redisLatency == nil {
		redisLatency, _ = otel.Meter("redis-client").Float64Histogram("redis.command.latency", metric.WithUnit("ms"))
	}
	return &Cache{client: client}
}

// GetClient returns the underlying Redis client (instrumented operations should use Cache methods)
func (c *Cache) GetClient() *redis.Client {
	// Direct access to client bypasses tracing/metrics, use with caution.
	return c.client
}

// Close closes the Redis client
func (c *Cache) Close() error {
	return c.client.Close()
}

// CacheLink stores a slug to target URL mapping for the redirect hot path.
func (c *Cache) CacheLink(ctx context.Context, slug, targetURL string, ttl time.Duration) error {
	start := time.Now()
	ctx, span := otel.Tracer("redis-client").Start(ctx, "redis.set", trace.WithAttributes(attribute.String("link.slug", slug)))
	defer func() {
		redisLatency.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attribute.String("redis.command", "set")))
		span.End()
	}()
	err := c.client.Set(ctx, linkKeyPrefix+slug, targetURL, ttl).Err()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Redis set failed")
	}
	return err
}

// GetLink resolves a cached slug. A miss returns ("", nil).
func (c *Cache) GetLink(ctx context.Context, slug string) (string, error) {
	start := time.Now()
	ctx, span := otel.Tracer("redis-client").Start(ctx, "redis.get", trace.WithAttributes(attribute.String("link.slug", slug)))
	defer func() {
		redisLatency.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attribute.String("redis.command", "get")))
		span.End()
	}()
	target, err := c.client.Get(ctx, linkKeyPrefix+slug).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Redis get failed")
		return "", err
	}
	return target, nil
}

// InvalidateLink drops the cached mapping for a deleted link.
func (c *Cache) InvalidateLink(ctx context.Context, slug string) error {
	return c.client.Del(ctx, linkKeyPrefix+slug).Err()
}

// IncrClick bumps the pending click counter for a slug. The analytics
// aggregator periodically drains these into Postgres.
func (c *Cache) IncrClick(ctx context.Context, slug string) error {
	start := time.Now()
	ctx, span := otel.Tracer("redis-client").Start(ctx, "redis.hincrby", trace.WithAttributes(attribute.String("link.slug", slug)))
	defer func() {
		redisLatency.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attribute.String("redis.command", "hincrby")))
		span.End()
	}()
	err := c.client.HIncrBy(ctx, clicksHashKey, slug, 1).Err()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Redis hincrby failed")
	}
	return err
}

// DrainClicks atomically takes and clears all pending click counters.
func (c *Cache) DrainClicks(ctx context.Context) (map[string]int64, error) {
	ctx, span := otel.Tracer("redis-client").Start(ctx, "redis.drain_clicks")
	defer span.End()

	pipe := c.client.TxPipeline()
	getAll := pipe.HGetAll(ctx, clicksHashKey)
	pipe.Del(ctx, clicksHashKey)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Redis drain failed")
		return nil, err
	}

	raw := getAll.Val()
	counts := make(map[string]int64, len(raw))
	for slug, v := range raw {
		var n int64
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			counts[slug] = n
		}
	}
	return counts, nil
}

// PublishClick pushes a click event onto the live channel.
func (c *Cache) PublishClick(ctx context.Context, ev *models.ClickEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal click event: %w", err)
	}

	start := time.Now()
	ctx, span := otel.Tracer("redis-client").Start(ctx, "redis.publish", trace.WithAttributes(attribute.String("redis.channel", ClickChannel)))
	defer func() {
		redisLatency.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attribute.String("redis.command", "publish")))
		span.End()
	}()
	if err := c.client.Publish(ctx, ClickChannel, payload).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Redis publish failed")
		return err
	}
	return nil
}

// SubscribeClicks opens a subscription on the live click channel. The
// caller owns the returned PubSub and must close it.
func (c *Cache) SubscribeClicks(ctx context.Context) *redis.PubSub {
	return c.client.Subscribe(ctx, ClickChannel)
}
