package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dukepan/linkpulse/internal/cache"
	"github.com/dukepan/linkpulse/internal/models"
	"github.com/dukepan/linkpulse/internal/utils"
)

// Hub fans live click events out to connected dashboard clients. Events
// arrive over the Redis pub/sub channel so every replica sees clicks
// handled by any replica.
type Hub struct {
	cache  *cache.Cache
	logger *utils.Logger

	register   chan *Client
	unregister chan *Client
	broadcast  chan *models.WSEvent

	clients map[*Client]struct{}
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewHub creates a hub backed by the given cache's pub/sub channel.
func NewHub(redisCache *cache.Cache, logger *utils.Logger) *Hub {
	return &Hub{
		cache:      redisCache,
		logger:     logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *models.WSEvent, 256),
		clients:    make(map[*Client]struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the hub loop and the Redis subscription consumer.
func (h *Hub) Start(ctx context.Context) {
	h.wg.Add(2)
	go h.run(ctx)
	go h.consume(ctx)
}

// Stop closes every client connection and waits for the loops to exit.
func (h *Hub) Stop() {
	close(h.done)
	h.wg.Wait()
}

// Broadcast queues an event for delivery to all connected clients. Events
// are dropped when the hub is saturated; the live feed is best effort.
func (h *Hub) Broadcast(ev *models.WSEvent) {
	select {
	case h.broadcast <- ev:
	default:
	}
}

// Register attaches a client to the hub.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

func (h *Hub) run(ctx context.Context) {
	defer h.wg.Done()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-h.done:
			h.closeAll()
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case ev := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- ev:
				default:
					// Slow consumer, drop it rather than stall the hub.
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// consume relays click events from Redis pub/sub into the broadcast loop.
func (h *Hub) consume(ctx context.Context) {
	defer h.wg.Done()

	sub := h.cache.SubscribeClicks(ctx)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev models.ClickEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				h.logger.Error(ctx, "failed to decode click event: %v", err)
				continue
			}
			h.Broadcast(&models.WSEvent{Type: "click", Data: &ev})
		}
	}
}

func (h *Hub) closeAll() {
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
