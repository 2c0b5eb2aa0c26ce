package domain

import "fmt"

// Classification thresholds for market news.
const (
	GoodUnemploymentCeiling = 6.0
	GoodGDPFloor            = 2.0
	BadUnemploymentFloor    = 8.0
	BadGDPCeiling           = 0.0
)

// MarketNews is the market sentiment derived from MarketFactors.
type MarketNews int

const (
	NewsNeutral MarketNews = iota
	NewsGood
	NewsBad
)

// String returns the string representation of MarketNews
func (n MarketNews) String() string {
	switch n {
	case NewsGood:
		return "GOOD"
	case NewsBad:
		return "BAD"
	default:
		return "NEUTRAL"
	}
}

// Headline returns the human-readable news line printed when factors change.
func (n MarketNews) Headline() string {
	switch n {
	case NewsGood:
		return "Stock share prices are expected to rise."
	case NewsBad:
		return "Stock share prices are expected to fall."
	default:
		return "No significant changes in stock share prices are expected."
	}
}

// Delta is the relative price adjustment associated with the news.
func (n MarketNews) Delta() float64 {
	switch n {
	case NewsGood:
		return 0.05
	case NewsBad:
		return -0.05
	default:
		return 0.0
	}
}

// MarketFactors holds the macroeconomic state shared by all traders.
type MarketFactors struct {
	UnemploymentRate float64 `json:"unemployment_rate"`
	GDPGrowth        float64 `json:"gdp_growth"`
}

// NewMarketFactors creates a MarketFactors value.
func NewMarketFactors(unemploymentRate, gdpGrowth float64) MarketFactors {
	return MarketFactors{UnemploymentRate: unemploymentRate, GDPGrowth: gdpGrowth}
}

// Classify maps the factors onto MarketNews.
// Only strict inequalities produce Good or Bad; boundary values are Neutral.
func (f MarketFactors) Classify() MarketNews {
	if f.UnemploymentRate < GoodUnemploymentCeiling && f.GDPGrowth > GoodGDPFloor {
		return NewsGood
	}
	if f.UnemploymentRate > BadUnemploymentFloor || f.GDPGrowth < BadGDPCeiling {
		return NewsBad
	}
	return NewsNeutral
}

func (f MarketFactors) String() string {
	return fmt.Sprintf("Unemployment Rate is %.2f%% & GDP Growth is %.2f%%", f.UnemploymentRate, f.GDPGrowth)
}
