package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock_sim/internal/app"
	"stock_sim/internal/infra"
	"stock_sim/internal/infra/feed"
	"stock_sim/internal/service"
)

const configPath = "configs/config.yaml"

func main() {
	if err := run(); err != nil {
		slog.Error("❌ Stock Sim failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// 1. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(ctx, configPath); err != nil {
		return fmt.Errorf("bootstrapping failed: %w", err)
	}
	defer bootstrap.Close()

	cfg := bootstrap.Config
	logger := bootstrap.Logger
	prices := service.NewPriceService(cfg.InitialStocks(), cfg.InitialFactors())

	deps := app.MarketDeps{
		Channel: bootstrap.Channel,
		Journal: bootstrap.Journal,
		Console: infra.NewConsole(os.Stdout),
		Prices:  prices,
		Metrics: bootstrap.Metrics,
		Logger:  logger,
	}

	// 3. Observer feed (optional)
	if cfg.Feed.Enabled {
		hubCtx, stopHub := context.WithCancel(context.Background())
		defer stopHub()

		hub := feed.NewHub(bootstrap.Metrics, logger)
		go hub.Run(hubCtx)
		deps.Hub = hub

		server := feed.NewServer(cfg.Feed.Addr, hub, prices, bootstrap.Metrics, logger)
		if err := server.Start(); err != nil {
			slog.Error("Failed to start feed server", slog.Any("error", err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Warn("Feed server shutdown failed", slog.Any("error", err))
				}
			}()
		}
	}

	market := app.NewMarket(cfg, deps)

	// 4. Continuous profiling (optional)
	stopProfiler, err := infra.StartProfiler(cfg, market.RunID())
	if err != nil {
		slog.Warn("Failed to start profiler", slog.Any("error", err))
	}
	defer stopProfiler()

	// 5. Run until the quota is met or a signal arrives
	result, err := market.Run(ctx)
	if err != nil {
		return err
	}
	if result.Completed < result.Quota {
		slog.Warn("👋 Market interrupted before the quota was met",
			slog.Uint64("completed", result.Completed),
			slog.Uint64("quota", result.Quota),
		)
	}
	return nil
}
