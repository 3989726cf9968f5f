package analytics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dukepan/linkpulse/internal/cache"
	"github.com/dukepan/linkpulse/internal/db"
	"github.com/dukepan/linkpulse/internal/models"
	"github.com/dukepan/linkpulse/internal/utils"
)

const eventQueueSize = 1000

// Aggregator moves click data from the Redis hot path into Postgres: it
// drains the pending per-slug counters on an interval, batches raw click
// events for insertion, and prunes events older than the retention window.
type Aggregator struct {
	db     *db.Database
	cache  *cache.Cache
	logger *utils.Logger

	flushInterval time.Duration
	retention     time.Duration

	events chan *models.ClickEvent
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewAggregator creates an aggregator with the given flush interval and
// click event retention window.
func NewAggregator(database *db.Database, redisCache *cache.Cache, logger *utils.Logger, flushInterval, retention time.Duration) *Aggregator {
	return &Aggregator{
		db:            database,
		cache:         redisCache,
		logger:        logger,
		flushInterval: flushInterval,
		retention:     retention,
		events:        make(chan *models.ClickEvent, eventQueueSize),
		done:          make(chan struct{}),
	}
}

// Start launches the flush loop and the daily prune job.
func (a *Aggregator) Start(ctx context.Context) {
	a.wg.Add(2)
	go a.flushLoop(ctx)
	go a.pruneLoop(ctx)
}

// Stop flushes whatever is pending and waits for the loops to exit.
func (a *Aggregator) Stop() {
	close(a.done)
	a.wg.Wait()
}

// QueueEvent records a raw click event for batched insertion. Drops the
// event if the queue is full; the per-slug counters remain authoritative.
func (a *Aggregator) QueueEvent(ev *models.ClickEvent) {
	select {
	case a.events <- ev:
	default:
	}
}

func (a *Aggregator) flushLoop(ctx context.Context) {
	defer a.wg.Done()

	batch := make([]*models.ClickEvent, 0, 64)
	ticker := time.NewTicker(a.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.flush(context.Background(), batch)
			return
		case <-a.done:
			a.flush(context.Background(), batch)
			return
		case ev := <-a.events:
			batch = append(batch, ev)
		case <-ticker.C:
			a.flush(ctx, batch)
			batch = batch[:0]
		}
	}
}

// flush drains the Redis counters into the links table and inserts the
// batched raw events.
func (a *Aggregator) flush(ctx context.Context, batch []*models.ClickEvent) {
	ctx, span := otel.Tracer("analytics").Start(ctx, "analytics.flush",
		trace.WithAttributes(attribute.Int("analytics.batch_size", len(batch))))
	defer span.End()

	counts, err := a.cache.DrainClicks(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to drain click counters")
		a.logger.Error(ctx, "analytics: failed to drain click counters: %v", err)
	}
	for slug, n := range counts {
		if err := a.db.AddClicks(ctx, slug, n); err != nil {
			span.RecordError(err)
			a.logger.Error(ctx, "analytics: failed to add %d clicks to %s: %v", n, slug, err)
		}
	}

	if len(batch) > 0 {
		if err := a.db.InsertClickEvents(ctx, batch); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to insert click events")
			a.logger.Error(ctx, "analytics: failed to insert click events: %v", err)
		}
	}
}

func (a *Aggregator) pruneLoop(ctx context.Context) {
	defer a.wg.Done()

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-a.retention)
			pruned, err := a.db.PruneClickEvents(ctx, cutoff)
			if err != nil {
				a.logger.Error(ctx, "analytics: failed to prune click events: %v", err)
				continue
			}
			a.logger.Info(ctx, "analytics: pruned %d click events older than %s", pruned, cutoff.Format(time.RFC3339))
		}
	}
}
