package engine

import (
	"fmt"
	"sync"

	"stock_sim/internal/domain"
)

// StockLedger is a fixed-size, ordered list of stocks shared by workers.
// Reads take the shared lock; every mutation takes the exclusive lock.
type StockLedger struct {
	mu     sync.RWMutex
	stocks []domain.Stock
}

// NewStockLedger copies stocks into a new ledger. The ledger never grows or shrinks.
func NewStockLedger(stocks []domain.Stock) *StockLedger {
	cp := make([]domain.Stock, len(stocks))
	copy(cp, stocks)
	return &StockLedger{stocks: cp}
}

// Len returns the number of stocks.
func (l *StockLedger) Len() int {
	return len(l.stocks)
}

// Get returns a copy of the stock at index.
func (l *StockLedger) Get(index int) (domain.Stock, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if err := l.checkIndex(index); err != nil {
		return domain.Stock{}, err
	}
	return l.stocks[index], nil
}

// SetPrice overwrites the price at index.
func (l *StockLedger) SetPrice(index int, price float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkIndex(index); err != nil {
		return err
	}
	l.stocks[index].CurrentPrice = price
	return nil
}

// FindByName returns the index of the first stock with name.
func (l *StockLedger) FindByName(name string) (int, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.find(name)
}

// ApplyByName overwrites the price of the named stock as one atomic step.
// It reports false when the name is unknown.
func (l *StockLedger) ApplyByName(name string, price float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.find(name)
	if !ok {
		return false
	}
	l.stocks[i].CurrentPrice = price
	return true
}

// Mutate runs fn on the stock at index under the exclusive lock and returns
// the stock as fn left it. fn must not call back into the ledger.
func (l *StockLedger) Mutate(index int, fn func(*domain.Stock)) (domain.Stock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkIndex(index); err != nil {
		return domain.Stock{}, err
	}
	name := l.stocks[index].Name
	fn(&l.stocks[index])
	// names are immutable
	l.stocks[index].Name = name
	return l.stocks[index], nil
}

// Snapshot returns a consistent copy of every stock.
func (l *StockLedger) Snapshot() []domain.Stock {
	l.mu.RLock()
	defer l.mu.RUnlock()

	cp := make([]domain.Stock, len(l.stocks))
	copy(cp, l.stocks)
	return cp
}

// Clone returns an independent ledger with the same contents.
func (l *StockLedger) Clone() *StockLedger {
	return NewStockLedger(l.Snapshot())
}

// find must be called with l.mu held.
func (l *StockLedger) find(name string) (int, bool) {
	for i := range l.stocks {
		if l.stocks[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

func (l *StockLedger) checkIndex(index int) error {
	if index < 0 || index >= len(l.stocks) {
		return fmt.Errorf("%w: %d not in [0, %d)", domain.ErrIndexOutOfRange, index, len(l.stocks))
	}
	return nil
}
