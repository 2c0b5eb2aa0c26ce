package service

import (
	"sort"
	"sync"

	"stock_sim/internal/domain"

	"github.com/shopspring/decimal"
)

// maxHistory bounds the per-stock price history.
const maxHistory = 10_000

// StockView is the broker-side view of one stock.
type StockView struct {
	Name      string          `json:"stock_name"`
	Price     decimal.Decimal `json:"current_price"`
	Open      decimal.Decimal `json:"open_price"`
	ChangePct decimal.Decimal `json:"change_pct"`
	Orders    int             `json:"orders"`
}

// FactorView is the latest committed market factors with their classification.
type FactorView struct {
	Factors  domain.MarketFactors `json:"factors"`
	News     string               `json:"news"`
	Headline string               `json:"headline"`
	Updates  int                  `json:"updates"`
}

// PriceService keeps the read model served to observers: the prices the
// broker applied, their history, and the latest market factors.
// It implements domain.MarketObserver.
type PriceService struct {
	mu      sync.RWMutex
	stocks  map[string]*StockView
	history map[string][]float64
	factors FactorView
}

// NewPriceService creates a PriceService seeded with the opening prices.
func NewPriceService(initial []domain.Stock, factors domain.MarketFactors) *PriceService {
	s := &PriceService{
		stocks:  make(map[string]*StockView, len(initial)),
		history: make(map[string][]float64, len(initial)),
	}
	for _, st := range initial {
		price := decimal.NewFromFloat(st.CurrentPrice)
		s.stocks[st.Name] = &StockView{Name: st.Name, Price: price, Open: price, ChangePct: decimal.Zero}
		s.history[st.Name] = []float64{st.CurrentPrice}
	}
	s.setFactors(factors, factors.Classify())
	s.factors.Updates = 0
	return s
}

// Ledger returns all stocks sorted by name
func (s *PriceService) Ledger() []StockView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]StockView, 0, len(s.stocks))
	for _, v := range s.stocks {
		result = append(result, *v)
	}

	// Sort by name for consistent ordering
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Stock returns the view of one stock.
func (s *PriceService) Stock(name string) (StockView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.stocks[name]
	if !ok {
		return StockView{}, false
	}
	return *v, true
}

// History returns a copy of a stock's applied prices, oldest first.
func (s *PriceService) History(name string) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.history[name]
	cp := make([]float64, len(h))
	copy(cp, h)
	return cp
}

// AllHistory returns a copy of every stock's history.
func (s *PriceService) AllHistory() map[string][]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]float64, len(s.history))
	for name, h := range s.history {
		cp := make([]float64, len(h))
		copy(cp, h)
		out[name] = cp
	}
	return out
}

// Factors returns the latest committed market factors.
func (s *PriceService) Factors() FactorView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.factors
}

func (s *PriceService) OnFactors(_ int, factors domain.MarketFactors, news domain.MarketNews) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setFactors(factors, news)
}

// setFactors must be called with s.mu held.
func (s *PriceService) setFactors(factors domain.MarketFactors, news domain.MarketNews) {
	s.factors = FactorView{
		Factors:  factors,
		News:     news.String(),
		Headline: news.Headline(),
		Updates:  s.factors.Updates + 1,
	}
}

func (s *PriceService) OnOrderSubmitted(int, domain.Activity, domain.Stock) {}

func (s *PriceService) OnOrderApplied(stock domain.Stock) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.stocks[stock.Name]
	if !ok {
		price := decimal.NewFromFloat(stock.CurrentPrice)
		v = &StockView{Name: stock.Name, Open: price}
		s.stocks[stock.Name] = v
	}
	v.Price = decimal.NewFromFloat(stock.CurrentPrice)
	v.Orders++
	s.calculateChange(v)

	h := append(s.history[stock.Name], stock.CurrentPrice)
	if len(h) > maxHistory {
		h = h[len(h)-maxHistory:]
	}
	s.history[stock.Name] = h
}

func (s *PriceService) OnTraderDone(int, int) {}

// calculateChange sets v.ChangePct to 100 * (Price - Open) / Open.
// It must be called with s.mu held.
func (s *PriceService) calculateChange(v *StockView) {
	if v.Open.IsZero() {
		v.ChangePct = decimal.Zero
		return
	}
	v.ChangePct = v.Price.Sub(v.Open).Div(v.Open).Mul(decimal.NewFromInt(100)).Round(4)
}
