package app

import (
	"context"
	"log/slog"

	"stock_sim/internal/domain"
	"stock_sim/internal/infra"
	"stock_sim/internal/infra/queue"
	"stock_sim/internal/infra/storage"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Logger  *slog.Logger
	Metrics *infra.Metrics
	Channel domain.OrderChannel
	Journal RunJournal // nil when storage is disabled
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads the config, sets up logging and opens the order channel
// and (optionally) the order journal.
func (b *Bootstrap) Initialize(ctx context.Context, configPath string) error {
	slog.Info("🚀 Bootstrapping Stock Sim...")

	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	b.Logger = infra.NewLogger(cfg)
	slog.SetDefault(b.Logger)
	b.Metrics = infra.NewMetrics()

	// 3. Order channel
	ch, err := queue.New(ctx, cfg)
	if err != nil {
		return err
	}
	b.Channel = ch
	slog.Info("✅ Order channel ready", slog.String("backend", cfg.Queue.Backend), slog.String("queue", cfg.Queue.Name))

	// 4. Journal (optional)
	if cfg.Storage.Enabled {
		journal, err := storage.OpenJournal(cfg)
		if err != nil {
			b.Channel.Close()
			return err
		}
		b.Journal = journal
		slog.Info("✅ Order journal initialized", slog.String("driver", cfg.Storage.Driver))
	}

	return nil
}

// Close releases what Initialize opened.
func (b *Bootstrap) Close() {
	if b.Channel != nil {
		if err := b.Channel.Close(); err != nil {
			slog.Warn("Failed to close order channel", slog.Any("error", err))
		}
	}
	if b.Journal != nil {
		if err := b.Journal.Close(); err != nil {
			slog.Warn("Failed to close journal", slog.Any("error", err))
		}
	}
}
