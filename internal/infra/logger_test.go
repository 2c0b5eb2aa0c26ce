package infra

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for name, want := range tests {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNewLogger_WritesFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Dir = t.TempDir()
	cfg.Logging.Level = "debug"

	logger := NewLogger(cfg)
	logger.Debug("hello", slog.Int("trader", 3))

	data, err := os.ReadFile(filepath.Join(cfg.Logging.Dir, "stock-sim.log"))
	if err != nil {
		t.Fatalf("Expected log file, got %v", err)
	}
	if !strings.Contains(string(data), `"trader":3`) {
		t.Errorf("Expected attribute in log file, got %s", data)
	}
}

func TestNewWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, "warn").With(slog.String("component", "broker"))

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("Info should be filtered at warn level")
	}
	if !strings.Contains(out, `"component":"broker"`) {
		t.Errorf("Expected component attr, got %s", out)
	}
}
