package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"stock_sim/internal/domain"
	"stock_sim/internal/event"
	"stock_sim/internal/infra"

	"github.com/bytedance/sonic"
)

// BrokerConfig holds the broker settings.
type BrokerConfig struct {
	Queue      string
	RunID      string
	MinBackoff time.Duration
	MaxBackoff time.Duration
	DumpPath   string
	// DrainPolls is how many consecutive empty polls after stop end the run.
	DrainPolls int
}

// BrokerDeps are the resources a broker works against.
// Ledger is the broker's own ledger, never the traders'.
type BrokerDeps struct {
	Ledger   *StockLedger
	Coord    *Coordinator
	Channel  domain.OrderChannel
	Sleeper  domain.Sleeper
	Observer domain.MarketObserver
	Journal  domain.OrderJournal // optional
	Metrics  *infra.Metrics
	Logger   *slog.Logger
}

// Broker drains the order queue into its ledger until stop is requested
// and a poll comes back empty.
type Broker struct {
	cfg BrokerConfig
	BrokerDeps
	applied atomic.Uint64
}

// NewBroker creates a broker. Nil observer, metrics and logger are replaced with no-ops.
func NewBroker(cfg BrokerConfig, deps BrokerDeps) *Broker {
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	if deps.Metrics == nil {
		deps.Metrics = infra.NewMetrics()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Sleeper == nil {
		deps.Sleeper = infra.ContextSleeper{}
	}
	if cfg.Queue == "" {
		cfg.Queue = domain.OrderQueue
	}
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = time.Millisecond
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = cfg.MinBackoff
	}
	if cfg.DumpPath == "" {
		cfg.DumpPath = "panic_dump.json"
	}
	if cfg.DrainPolls < 1 {
		cfg.DrainPolls = 1
	}
	deps.Logger = deps.Logger.With(slog.String("component", "broker"))
	return &Broker{cfg: cfg, BrokerDeps: deps}
}

// Applied returns how many orders have been applied to the ledger.
func (b *Broker) Applied() uint64 {
	return b.applied.Load()
}

// Run polls the channel until DrainPolls consecutive empty polls observe
// stop, or ctx is done. Payloads already queued when stop is requested are
// still applied.
// A panic dumps the ledger to DumpPath and halts the process.
func (b *Broker) Run(ctx context.Context) error {
	b.Logger.Info("Broker started", slog.String("queue", b.cfg.Queue))

	defer func() {
		if r := recover(); r != nil {
			b.Logger.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
			b.DumpState(b.cfg.DumpPath)
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	backoff := infra.NewPollBackoff(b.cfg.MinBackoff, b.cfg.MaxBackoff)
	drained := 0
	for {
		payload, err := b.Channel.Consume(ctx, b.cfg.Queue)
		if err != nil {
			// transport errors count as an empty poll
			if ctx.Err() == nil {
				b.Logger.Warn("Consume failed", slog.Any("error", err))
			}
			payload = ""
		}

		if payload == "" {
			b.Metrics.RecordEmptyPoll()
			if b.Coord.ShouldStop() {
				drained++
			}
			if drained >= b.cfg.DrainPolls || ctx.Err() != nil {
				b.Logger.Info("Broker stopping", slog.Uint64("applied", b.Applied()))
				return nil
			}
			// a cancelled sleep falls through to the next poll, which exits
			_ = b.Sleeper.Sleep(ctx, backoff.Next())
			continue
		}

		backoff.Reset()
		drained = 0
		b.process(ctx, payload)
	}
}

func (b *Broker) process(ctx context.Context, payload string) {
	order := event.AcquireOrder()
	defer event.ReleaseOrder(order)

	if err := event.DecodeOrderInto(payload, order); err != nil {
		b.Metrics.RecordDecodeFailure()
		b.Logger.Warn("Dropping undecodable order", slog.Any("error", err))
		return
	}

	if !b.Ledger.ApplyByName(order.StockName, order.CurrentPrice) {
		b.Metrics.RecordUnknownStock()
		b.Logger.Debug("Dropping order",
			slog.String("stock", order.StockName),
			slog.Any("error", domain.ErrUnknownStock),
		)
		return
	}

	stock := order.Stock()
	b.applied.Add(1)
	b.Metrics.RecordOrderApplied()
	b.Observer.OnOrderApplied(stock)

	if b.Journal != nil {
		if err := b.Journal.RecordApplied(context.WithoutCancel(ctx), b.cfg.RunID, stock); err != nil {
			b.Logger.Warn("Failed to journal order", slog.String("stock", stock.Name), slog.Any("error", err))
		}
	}
}

// brokerDump is the post-mortem file layout.
type brokerDump struct {
	RunID     string         `json:"run_id"`
	Applied   uint64         `json:"applied"`
	Completed uint64         `json:"completed"`
	Quota     uint64         `json:"quota"`
	Stopped   bool           `json:"stopped"`
	Stocks    []domain.Stock `json:"stocks"`
	DumpedAt  time.Time      `json:"dumped_at"`
}

// DumpState writes the broker's ledger and counters to a file (for post-mortem).
func (b *Broker) DumpState(filename string) {
	b.Logger.Info("Dumping internal state...", slog.String("file", filename))

	data := brokerDump{
		RunID:     b.cfg.RunID,
		Applied:   b.Applied(),
		Completed: b.Coord.Completed(),
		Quota:     b.Coord.Quota(),
		Stopped:   b.Coord.ShouldStop(),
		Stocks:    b.Ledger.Snapshot(),
		DumpedAt:  time.Now(),
	}

	raw, err := sonic.ConfigStd.MarshalIndent(data, "", "  ")
	if err != nil {
		b.Logger.Error("Failed to marshal state", slog.Any("error", err))
		return
	}

	if err := os.WriteFile(filename, raw, 0644); err != nil {
		b.Logger.Error("Failed to write state dump", slog.Any("error", err))
	}
}
