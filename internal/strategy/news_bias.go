package strategy

import (
	"stock_sim/internal/domain"
)

// NewsBias moves a price with the market news first, then applies the
// buy/sell step measured against the price before the news.
type NewsBias struct{}

// NewNewsBias creates the default trading rule.
func NewNewsBias() *NewsBias {
	return &NewsBias{}
}

func (NewsBias) Apply(stock *domain.Stock, news domain.MarketNews, priceChange float64) Action {
	original := stock.CurrentPrice
	stock.AdjustPrice(news)
	activity := stock.ApplyActivity(original, priceChange)

	action := Action{Type: ActionSell, Symbol: stock.Name, Price: stock.CurrentPrice}
	if activity == domain.ActivityBuy {
		action.Type = ActionBuy
	}
	return action
}
