package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"stock_sim/internal/domain"
	"stock_sim/internal/engine"
	"stock_sim/internal/event"
	"stock_sim/internal/infra"
	"stock_sim/internal/infra/feed"
	"stock_sim/internal/service"
	"stock_sim/internal/strategy"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const chartWidth = 640

// RunJournal is the audit trail of a run. *storage.Journal implements it.
type RunJournal interface {
	domain.OrderJournal
	StartRun(ctx context.Context, run *domain.RunInfo) error
	FinishRun(ctx context.Context, runID string, completed int, finishedAt time.Time) error
	Close() error
}

// MarketDeps are the collaborators of a run. Channel is required.
type MarketDeps struct {
	Channel domain.OrderChannel
	Journal RunJournal // optional
	Hub     *feed.Hub  // optional
	Console *infra.Console
	Prices  *service.PriceService
	Sleeper domain.Sleeper
	Metrics *infra.Metrics
	Logger  *slog.Logger
}

// RunResult summarizes a finished run.
type RunResult struct {
	RunID        string
	Quota        uint64
	Completed    uint64
	Applied      uint64
	TraderLedger []domain.Stock
	BrokerLedger []domain.Stock
	Metrics      infra.MetricsSnapshot
	Elapsed      time.Duration
}

// Market runs one simulation: N traders and one broker over the order channel.
type Market struct {
	cfg   *infra.Config
	runID string
	MarketDeps
}

// NewMarket creates a market for cfg. Missing console, price service,
// sleeper, metrics and logger get defaults.
func NewMarket(cfg *infra.Config, deps MarketDeps) *Market {
	if deps.Console == nil {
		deps.Console = infra.NewConsole(os.Stdout)
	}
	if deps.Prices == nil {
		deps.Prices = service.NewPriceService(cfg.InitialStocks(), cfg.InitialFactors())
	}
	if deps.Sleeper == nil {
		deps.Sleeper = infra.ContextSleeper{}
	}
	if deps.Metrics == nil {
		deps.Metrics = infra.NewMetrics()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Market{cfg: cfg, runID: uuid.NewString(), MarketDeps: deps}
}

// RunID identifies this market in logs, the journal and the feed.
func (m *Market) RunID() string {
	return m.runID
}

// Run opens the market, waits for every trader to finish, then lets the
// broker drain the queue. Cancelling ctx stops the workers early; the
// result then reports fewer completed orders than the quota.
func (m *Market) Run(ctx context.Context) (*RunResult, error) {
	if m.Channel == nil {
		return nil, fmt.Errorf("market: order channel is required")
	}

	runID := m.runID
	started := time.Now()
	sim := m.cfg.Simulation
	logger := m.Logger.With(slog.String("run_id", runID))

	traderLedger := engine.NewStockLedger(m.cfg.InitialStocks())
	brokerLedger := traderLedger.Clone()
	factors := engine.NewMarketFactorState(m.cfg.InitialFactors())
	coord := engine.NewCoordinator(uint64(m.cfg.Quota()))

	observers := []domain.MarketObserver{m.Console, m.Prices}
	if m.Hub != nil {
		observers = append(observers, m.Hub)
	}
	observer := newMultiObserver(observers...)

	if m.Journal != nil {
		run := &domain.RunInfo{ID: runID, Traders: sim.NumTraders, Quota: m.cfg.Quota(), StartedAt: started}
		if err := m.Journal.StartRun(ctx, run); err != nil {
			logger.Warn("Failed to journal run start", slog.Any("error", err))
		}
	}

	logger.Info("📈 Market opening",
		slog.Int("traders", sim.NumTraders),
		slog.Int("orders_per_trader", sim.OrdersPerTrader),
		slog.Uint64("quota", coord.Quota()),
	)
	m.Console.Open()

	minBackoff, maxBackoff := m.cfg.BackoffRange()
	broker := engine.NewBroker(engine.BrokerConfig{
		Queue:      m.cfg.Queue.Name,
		RunID:      runID,
		MinBackoff: minBackoff,
		MaxBackoff: maxBackoff,
		DumpPath:   m.cfg.Broker.DumpPath,
		DrainPolls: m.cfg.DrainPolls(),
	}, engine.BrokerDeps{
		Ledger:   brokerLedger,
		Coord:    coord,
		Channel:  m.Channel,
		Sleeper:  m.Sleeper,
		Observer: observer,
		Journal:  m.Journal,
		Metrics:  m.Metrics,
		Logger:   logger,
	})

	if p, ok := m.Channel.(domain.QueuePurger); ok {
		if err := p.Purge(ctx, m.cfg.Queue.Name); err != nil {
			logger.Warn("Failed to purge stale orders", slog.String("queue", m.cfg.Queue.Name), slog.Any("error", err))
		}
	}

	event.Warmup(sim.NumTraders)

	var brokerGroup errgroup.Group
	brokerGroup.Go(func() error { return broker.Run(ctx) })

	seed := sim.Seed
	if seed == 0 {
		seed = uint64(started.UnixNano())
	}
	delayMin, delayMax := m.cfg.DelayRange()

	traders, traderCtx := errgroup.WithContext(ctx)
	traders.SetLimit(sim.NumTraders)
	for id := 0; id < sim.NumTraders; id++ {
		t := engine.NewTrader(engine.TraderConfig{
			ID:                      id,
			Orders:                  sim.OrdersPerTrader,
			FactorUpdateProbability: sim.FactorUpdateProbability,
			DelayMin:                delayMin,
			DelayMax:                delayMax,
			Queue:                   m.cfg.Queue.Name,
		}, engine.TraderDeps{
			Ledger:   traderLedger,
			Factors:  factors,
			Coord:    coord,
			Channel:  m.Channel,
			Strategy: strategy.NewNewsBias(),
			Rand:     infra.NewRandomSource(seed + uint64(id)),
			Sleeper:  m.Sleeper,
			Observer: observer,
			Metrics:  m.Metrics,
			Logger:   logger,
		})
		traders.Go(func() error { return t.Run(traderCtx) })
	}

	traderErr := traders.Wait()
	// Covers cancelled runs; after a met quota this is a no-op.
	coord.RequestStop()
	brokerErr := brokerGroup.Wait()

	m.Console.BrokerFinished()
	m.Console.Close()

	result := &RunResult{
		RunID:        runID,
		Quota:        coord.Quota(),
		Completed:    coord.Completed(),
		Applied:      broker.Applied(),
		TraderLedger: traderLedger.Snapshot(),
		BrokerLedger: brokerLedger.Snapshot(),
		Metrics:      m.Metrics.Snapshot(),
		Elapsed:      time.Since(started),
	}
	m.finish(ctx, logger, result)

	if traderErr != nil {
		return result, fmt.Errorf("trader failed: %w", traderErr)
	}
	if brokerErr != nil {
		return result, fmt.Errorf("broker failed: %w", brokerErr)
	}
	return result, nil
}

// finish publishes the outcome of a run to the journal, feed, chart and log.
func (m *Market) finish(ctx context.Context, logger *slog.Logger, r *RunResult) {
	if m.Journal != nil {
		err := m.Journal.FinishRun(context.WithoutCancel(ctx), r.RunID, int(r.Completed), time.Now())
		if err != nil {
			logger.Warn("Failed to journal run end", slog.Any("error", err))
		}
	}

	if m.Hub != nil {
		m.Hub.RunFinished(r.RunID, r.Completed, r.Quota)
	}

	if path := m.cfg.Report.ChartPath; path != "" {
		if err := infra.RenderChart(path, m.Prices.AllHistory(), chartWidth); err != nil {
			logger.Warn("Failed to render chart", slog.String("path", path), slog.Any("error", err))
		} else {
			logger.Info("🖼️ Price chart saved", slog.String("path", path))
		}
	}

	logger.Info("✨ Market closed",
		slog.Uint64("completed", r.Completed),
		slog.Uint64("applied", r.Applied),
		slog.Duration("elapsed", r.Elapsed),
		slog.Any("metrics", r.Metrics),
	)
}
