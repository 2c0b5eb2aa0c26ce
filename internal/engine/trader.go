package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stock_sim/internal/domain"
	"stock_sim/internal/event"
	"stock_sim/internal/infra"
	"stock_sim/internal/strategy"
)

// Ranges traders draw new market factors and price changes from.
const (
	UnemploymentMin = 3.0
	UnemploymentMax = 10.0
	GDPGrowthMin    = -1.0
	GDPGrowthMax    = 4.0
	PriceChangeMin  = -0.2
	PriceChangeMax  = 0.2
)

// TraderConfig holds the per-trader settings.
type TraderConfig struct {
	ID                      int
	Orders                  int
	FactorUpdateProbability float64
	DelayMin                time.Duration
	DelayMax                time.Duration
	Queue                   string
}

// TraderDeps are the shared resources a trader works against.
type TraderDeps struct {
	Ledger   *StockLedger
	Factors  *MarketFactorState
	Coord    *Coordinator
	Channel  domain.OrderChannel
	Strategy strategy.Strategy
	Rand     domain.RandomSource // owned by this trader
	Sleeper  domain.Sleeper
	Observer domain.MarketObserver
	Metrics  *infra.Metrics
	Logger   *slog.Logger
}

// Trader mutates the shared ledger and publishes each mutation as an order.
type Trader struct {
	cfg TraderConfig
	TraderDeps
	emitted int
}

// NewTrader creates a trader. Nil observer, metrics and logger are replaced with no-ops.
func NewTrader(cfg TraderConfig, deps TraderDeps) *Trader {
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	if deps.Metrics == nil {
		deps.Metrics = infra.NewMetrics()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Strategy == nil {
		deps.Strategy = strategy.NewNewsBias()
	}
	if deps.Sleeper == nil {
		deps.Sleeper = infra.ContextSleeper{}
	}
	if cfg.Queue == "" {
		cfg.Queue = domain.OrderQueue
	}
	deps.Logger = deps.Logger.With(slog.Int("trader", cfg.ID))
	return &Trader{cfg: cfg, TraderDeps: deps}
}

// ID returns the trader's identity.
func (t *Trader) ID() int {
	return t.cfg.ID
}

// Emitted returns how many orders this trader produced (sent or lost).
func (t *Trader) Emitted() int {
	return t.emitted
}

// Run trades until the per-trader order count is reached, stop is requested,
// or ctx is cancelled. Cancellation is a normal exit.
func (t *Trader) Run(ctx context.Context) error {
	defer func() {
		t.Observer.OnTraderDone(t.cfg.ID, t.emitted)
		t.Logger.Info("Trader finished", slog.Int("orders", t.emitted))
	}()

	for t.emitted < t.cfg.Orders {
		if t.Coord.ShouldStop() {
			return nil
		}

		if err := t.Sleeper.Sleep(ctx, t.nextDelay()); err != nil {
			return nil
		}
		// the quota may have been met while we slept
		if t.Coord.ShouldStop() {
			return nil
		}

		if t.Rand.Float64() < t.cfg.FactorUpdateProbability {
			t.updateFactors()
		}

		if t.trade(ctx) {
			return nil
		}
	}
	return nil
}

func (t *Trader) nextDelay() time.Duration {
	span := t.cfg.DelayMax - t.cfg.DelayMin
	if span <= 0 {
		return t.cfg.DelayMin
	}
	return t.cfg.DelayMin + time.Duration(t.Rand.Float64()*float64(span))
}

func (t *Trader) updateFactors() {
	unemployment := uniform(t.Rand, UnemploymentMin, UnemploymentMax)
	gdp := uniform(t.Rand, GDPGrowthMin, GDPGrowthMax)

	committed := t.Factors.Write(func(f *domain.MarketFactors) {
		f.UnemploymentRate = unemployment
		f.GDPGrowth = gdp
	})
	news := committed.Classify()

	t.Metrics.RecordFactorUpdate()
	t.Observer.OnFactors(t.cfg.ID, committed, news)
	t.Logger.Debug("Market factors updated",
		slog.Float64("unemployment_rate", committed.UnemploymentRate),
		slog.Float64("gdp_growth", committed.GDPGrowth),
		slog.String("news", news.String()),
	)
}

// trade performs one order and reports whether this trader hit the global quota.
func (t *Trader) trade(ctx context.Context) bool {
	news := t.Factors.Classify()
	index := t.Rand.IntN(t.Ledger.Len())
	priceChange := uniform(t.Rand, PriceChangeMin, PriceChangeMax)

	var action strategy.Action
	stock, err := t.Ledger.Mutate(index, func(s *domain.Stock) {
		action = t.Strategy.Apply(s, news, priceChange)
	})
	if err != nil {
		// index comes from IntN(Len) on a fixed-size ledger
		panic(fmt.Sprintf("LEDGER_INDEX_INVARIANT: %v", err))
	}

	t.submit(ctx, action.Type.Activity(), stock)
	t.emitted++

	count := t.Coord.RecordOrder()
	if t.Coord.QuotaReached(count) {
		if t.Coord.RequestStop() {
			t.Logger.Info("Order quota reached", slog.Uint64("completed", count))
		}
		return true
	}
	return false
}

// submit serializes and sends one order. Failures are logged and the order is lost.
func (t *Trader) submit(ctx context.Context, activity domain.Activity, stock domain.Stock) {
	payload, err := event.EncodeOrder(domain.OrderFromStock(stock))
	if err != nil {
		t.Metrics.RecordSendFailure()
		t.Logger.Error("Failed to serialize order",
			slog.String("stock", stock.Name),
			slog.Any("error", err),
		)
		return
	}

	start := time.Now()
	if err := t.Channel.Send(ctx, payload, t.cfg.Queue); err != nil {
		t.Metrics.RecordSendFailure()
		t.Logger.Error("Failed to send order",
			slog.String("stock", stock.Name),
			slog.Bool("retriable", domain.IsRetriable(err)),
			slog.Any("error", err),
		)
		return
	}
	t.Metrics.RecordOrderSubmitted(time.Since(start))
	t.Observer.OnOrderSubmitted(t.cfg.ID, activity, stock)
}

func uniform(r domain.RandomSource, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}
