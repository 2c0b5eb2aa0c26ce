package infra

import (
	"log/slog"

	"github.com/grafana/pyroscope-go"
)

// StartProfiler starts continuous profiling when an address is configured.
// The returned stop function is always safe to call.
func StartProfiler(cfg *Config, runID string) (func(), error) {
	if cfg.Profiling.PyroscopeAddr == "" {
		return func() {}, nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.Profiling.AppName,
		ServerAddress:   cfg.Profiling.PyroscopeAddr,
		Tags: map[string]string{
			"run_id": runID,
			"queue":  cfg.Queue.Backend,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexCount,
		},
	})
	if err != nil {
		return func() {}, err
	}

	slog.Info("🕵️ Pyroscope profiler started", slog.String("addr", cfg.Profiling.PyroscopeAddr))
	return func() {
		if err := profiler.Stop(); err != nil {
			slog.Warn("Failed to stop profiler", slog.Any("error", err))
		}
	}, nil
}
