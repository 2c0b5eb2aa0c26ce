package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestQueueError(t *testing.T) {
	baseErr := errors.New("connection refused")

	t.Run("retriable error", func(t *testing.T) {
		err := NewQueueError("send", OrderQueue, baseErr)

		if !err.IsRetriable() {
			t.Error("Expected error to be retriable")
		}

		if err.Error() != "send stock_order: connection refused" {
			t.Errorf("Error message = %q, want %q", err.Error(), "send stock_order: connection refused")
		}

		if !errors.Is(err, baseErr) {
			t.Error("Expected error to wrap baseErr")
		}
	})

	t.Run("fatal error", func(t *testing.T) {
		err := NewFatalQueueError("dial", OrderQueue, baseErr)

		if err.IsRetriable() {
			t.Error("Expected error to not be retriable")
		}
	})

	t.Run("IsRetriable helper", func(t *testing.T) {
		retriable := NewQueueError("send", OrderQueue, baseErr)
		fatal := NewFatalQueueError("dial", OrderQueue, baseErr)
		plain := errors.New("plain error")

		if !IsRetriable(retriable) {
			t.Error("IsRetriable should return true for retriable error")
		}

		if IsRetriable(fatal) {
			t.Error("IsRetriable should return false for fatal error")
		}

		if IsRetriable(plain) {
			t.Error("IsRetriable should return false for plain error")
		}
	})
}

func TestOrderDecodeError(t *testing.T) {
	baseErr := errors.New("unexpected end of JSON input")

	t.Run("message carries payload", func(t *testing.T) {
		err := &OrderDecodeError{Payload: `{"stock_name":`, Err: baseErr}
		want := `decode order "{"stock_name":": unexpected end of JSON input`
		if err.Error() != want {
			t.Errorf("Error message = %q, want %q", err.Error(), want)
		}
		if err.IsRetriable() {
			t.Error("OrderDecodeError should never be retriable")
		}
		if !errors.Is(err, baseErr) {
			t.Error("Expected error to wrap baseErr")
		}
	})

	t.Run("long payload is truncated", func(t *testing.T) {
		err := &OrderDecodeError{Payload: strings.Repeat("x", 200), Err: baseErr}
		if len(err.Error()) > 120 {
			t.Errorf("Expected truncated message, got %d bytes", len(err.Error()))
		}
	})
}

func TestConfigError(t *testing.T) {
	baseErr := errors.New("must be positive")
	err := &ConfigError{Field: "simulation.num_traders", Err: baseErr}

	if err.IsRetriable() {
		t.Error("ConfigError should never be retriable")
	}

	expected := "config error [simulation.num_traders]: must be positive"
	if err.Error() != expected {
		t.Errorf("Error message = %q, want %q", err.Error(), expected)
	}
}
