package infra

import (
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{-1, time.Millisecond},
		{0, time.Millisecond},
		{1, 2 * time.Millisecond},
		{4, 16 * time.Millisecond},
		{5, 32 * time.Millisecond},
		{6, 50 * time.Millisecond},
		{200, 50 * time.Millisecond},
	}

	for _, tt := range tests {
		got := CalculateBackoff(tt.attempt, time.Millisecond, 50*time.Millisecond)
		if got != tt.want {
			t.Errorf("CalculateBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestPollBackoff(t *testing.T) {
	b := NewPollBackoff(time.Millisecond, 8*time.Millisecond)

	want := []time.Duration{1, 2, 4, 8, 8, 8}
	for i, w := range want {
		if got := b.Next(); got != w*time.Millisecond {
			t.Errorf("Next() #%d = %v, want %v", i, got, w*time.Millisecond)
		}
	}

	b.Reset()
	if got := b.Next(); got != time.Millisecond {
		t.Errorf("After Reset, Next() = %v, want 1ms", got)
	}
}
