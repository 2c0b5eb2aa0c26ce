package strategy

import (
	"stock_sim/internal/domain"
)

// ActionType defines the type of trading action
type ActionType int

const (
	ActionBuy  ActionType = iota + 1
	ActionSell // Sell
)

// String returns the string representation of ActionType
func (a ActionType) String() string {
	switch a {
	case ActionBuy:
		return "BUY"
	case ActionSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Activity maps the action onto the order side.
func (a ActionType) Activity() domain.Activity {
	if a == ActionBuy {
		return domain.ActivityBuy
	}
	return domain.ActivitySell
}

// Action represents a decision made by the strategy
type Action struct {
	Type   ActionType
	Symbol string
	Price  float64 // price after the decision was applied
}

// Strategy is the interface that all trading strategies must implement.
// It is called by a trader while the stock is held under the ledger write lock,
// so it must not block.
type Strategy interface {
	// Apply mutates the stock in place for one trade and returns the decision.
	// priceChange is the trader's random draw in [-0.2, 0.2).
	Apply(stock *domain.Stock, news domain.MarketNews, priceChange float64) Action
}
