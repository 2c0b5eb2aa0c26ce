package engine

import "stock_sim/internal/domain"

// nopObserver discards every event.
type nopObserver struct{}

func (nopObserver) OnFactors(int, domain.MarketFactors, domain.MarketNews) {}
func (nopObserver) OnOrderSubmitted(int, domain.Activity, domain.Stock) {}
func (nopObserver) OnOrderApplied(domain.Stock) {}
func (nopObserver) OnTraderDone(int, int) {}
