package engine

import (
	"sync"

	"stock_sim/internal/domain"
)

// MarketFactorState guards the macro factors shared by all traders.
// Readers always get both fields from the same committed write.
type MarketFactorState struct {
	mu      sync.RWMutex
	factors domain.MarketFactors
}

// NewMarketFactorState creates the state with its initial factors.
func NewMarketFactorState(initial domain.MarketFactors) *MarketFactorState {
	return &MarketFactorState{factors: initial}
}

// Read returns a snapshot of the current factors.
func (s *MarketFactorState) Read() domain.MarketFactors {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.factors
}

// Write applies mutator under the exclusive lock and returns the committed snapshot.
func (s *MarketFactorState) Write(mutator func(*domain.MarketFactors)) domain.MarketFactors {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutator(&s.factors)
	return s.factors
}

// Classify reads a fresh snapshot and classifies it outside the lock.
func (s *MarketFactorState) Classify() domain.MarketNews {
	return s.Read().Classify()
}
