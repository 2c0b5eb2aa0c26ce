package app

import "stock_sim/internal/domain"

// multiObserver forwards every market event to each observer in order.
type multiObserver []domain.MarketObserver

func newMultiObserver(observers ...domain.MarketObserver) multiObserver {
	out := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (m multiObserver) OnFactors(traderID int, factors domain.MarketFactors, news domain.MarketNews) {
	for _, o := range m {
		o.OnFactors(traderID, factors, news)
	}
}

func (m multiObserver) OnOrderSubmitted(traderID int, activity domain.Activity, stock domain.Stock) {
	for _, o := range m {
		o.OnOrderSubmitted(traderID, activity, stock)
	}
}

func (m multiObserver) OnOrderApplied(stock domain.Stock) {
	for _, o := range m {
		o.OnOrderApplied(stock)
	}
}

func (m multiObserver) OnTraderDone(traderID int, orders int) {
	for _, o := range m {
		o.OnTraderDone(traderID, orders)
	}
}
