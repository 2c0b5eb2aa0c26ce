package feed

import (
	"context"
	"log/slog"

	"stock_sim/internal/domain"
	"stock_sim/internal/event"
	"stock_sim/internal/infra"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// Hub fans encoded events out to every connected websocket client.
// It implements domain.MarketObserver so it can be attached to a run directly.
type Hub struct {
	clients    map[*client]struct{}
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}

	metrics *infra.Metrics
	logger  *slog.Logger
}

// NewHub creates a hub. Call Run before serving clients.
func NewHub(metrics *infra.Metrics, logger *slog.Logger) *Hub {
	if metrics == nil {
		metrics = infra.NewMetrics()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		// Buffered so that traders and the broker never wait on the hub
		broadcast:  make(chan []byte, 1024),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "feed")),
	}
}

// Run is the hub loop. It returns when ctx is done, disconnecting every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			h.drop(c)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.metrics.IncrementFeedClients()

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}

		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					// Client too slow, disconnect to prevent Hub blocking
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.metrics.DecrementFeedClients()
}

// Broadcast queues an envelope for every client. It never blocks:
// when the queue is full the event is dropped.
func (h *Hub) Broadcast(env event.Envelope) {
	raw, err := event.Encode(env)
	if err != nil {
		h.logger.Warn("Failed to encode feed event", slog.String("type", string(env.Type)), slog.Any("error", err))
		return
	}
	select {
	case h.broadcast <- raw:
	default:
		h.logger.Debug("Feed queue full, dropping event", slog.String("type", string(env.Type)))
	}
}

func (h *Hub) OnFactors(traderID int, factors domain.MarketFactors, news domain.MarketNews) {
	h.Broadcast(event.NewEnvelope(event.TypeFactors, event.FactorsEvent{
		TraderID: traderID,
		Factors:  factors,
		News:     news.String(),
	}))
}

func (h *Hub) OnOrderSubmitted(int, domain.Activity, domain.Stock) {}

func (h *Hub) OnOrderApplied(stock domain.Stock) {
	h.Broadcast(event.NewEnvelope(event.TypeOrderApplied, event.OrderAppliedEvent{
		StockName:    stock.Name,
		CurrentPrice: stock.CurrentPrice,
	}))
}

func (h *Hub) OnTraderDone(int, int) {}

// RunFinished announces the end of a run.
func (h *Hub) RunFinished(runID string, completed, quota uint64) {
	h.Broadcast(event.NewEnvelope(event.TypeRunFinished, event.RunFinishedEvent{
		RunID:     runID,
		Completed: completed,
		Quota:     quota,
	}))
}
