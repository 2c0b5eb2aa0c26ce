package domain

// Buy/sell spread applied on top of the drawn price change.
const ActivitySpread = 0.05

// Stock is a named security with its current price.
// It doubles as the order payload sent from traders to the broker.
type Stock struct {
	Name         string  `json:"stock_name"`
	CurrentPrice float64 `json:"current_price"`
}

// NewStock creates a new stock.
func NewStock(name string, price float64) Stock {
	return Stock{Name: name, CurrentPrice: price}
}

// AdjustPrice applies the news-driven adjustment in place.
func (s *Stock) AdjustPrice(news MarketNews) {
	s.CurrentPrice = AdjustForNews(s.CurrentPrice, news)
}

// ApplyActivity applies the buy/sell adjustment in place and returns the activity.
// originalPrice is the price before the news adjustment of the same trade.
func (s *Stock) ApplyActivity(originalPrice, priceChange float64) Activity {
	activity := ActivityFor(priceChange)
	s.CurrentPrice += ActivityAdjustment(originalPrice, priceChange)
	return activity
}

// AdjustForNews returns price * (1 + delta(news)).
func AdjustForNews(price float64, news MarketNews) float64 {
	return price * (1.0 + news.Delta())
}

// ActivityFor labels a price change: negative is a buy, anything else a sell.
func ActivityFor(priceChange float64) Activity {
	if priceChange < 0.0 {
		return ActivityBuy
	}
	return ActivitySell
}

// ActivityAdjustment is the amount added to the price by the buy/sell step.
func ActivityAdjustment(originalPrice, priceChange float64) float64 {
	if ActivityFor(priceChange) == ActivityBuy {
		return originalPrice * (priceChange + ActivitySpread)
	}
	return originalPrice * (priceChange - ActivitySpread)
}
