package infra

import (
	"fmt"
	"io"
	"sync"

	"stock_sim/internal/domain"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Color palette
var (
	FactorColor  = lipgloss.Color("#3B82F6") // Blue
	BuyColor     = lipgloss.Color("#10B981") // Green
	SellColor    = lipgloss.Color("#EF4444") // Red
	NeutralColor = lipgloss.Color("#6B7280") // Gray
	BannerColor  = lipgloss.Color("#F59E0B") // Amber
)

// Console prints the human-readable progress of a run.
// It implements domain.MarketObserver; lines from concurrent workers never interleave.
type Console struct {
	mu sync.Mutex
	w  io.Writer

	factorStyle  lipgloss.Style
	goodStyle    lipgloss.Style
	badStyle     lipgloss.Style
	neutralStyle lipgloss.Style
	bannerStyle  lipgloss.Style
}

// NewConsole creates a console writing to w.
// Colors are dropped automatically when w is not a terminal.
func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:            w,
		factorStyle:  r.NewStyle().Foreground(FactorColor),
		goodStyle:    r.NewStyle().Foreground(BuyColor),
		badStyle:     r.NewStyle().Foreground(SellColor),
		neutralStyle: r.NewStyle().Foreground(NeutralColor),
		bannerStyle:  r.NewStyle().Bold(true).Foreground(BannerColor),
	}
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, s)
}

// Open prints the opening banner.
func (c *Console) Open() {
	c.println(c.bannerStyle.Render("MARKET OPENS....."))
}

// Close prints the closing banner.
func (c *Console) Close() {
	c.println(c.bannerStyle.Render("MARKET CLOSED..."))
}

// BrokerFinished prints the broker's final line.
func (c *Console) BrokerFinished() {
	c.println("Broker has finished processing all orders.")
}

func (c *Console) OnFactors(traderID int, factors domain.MarketFactors, news domain.MarketNews) {
	line := c.factorStyle.Render(fmt.Sprintf("Trader %d updated market factors: %s", traderID, factors))
	c.println(line + "\n" + c.newsStyle(news).Render(news.Headline()))
}

func (c *Console) OnOrderSubmitted(traderID int, activity domain.Activity, stock domain.Stock) {
	style := c.goodStyle
	if activity == domain.ActivitySell {
		style = c.badStyle
	}
	c.println(fmt.Sprintf("Trader %d: %s %s shares at $%s",
		traderID, style.Render(string(activity)), stock.Name, money(stock.CurrentPrice)))
}

func (c *Console) OnOrderApplied(stock domain.Stock) {
	c.println(fmt.Sprintf("* Received order for %s\n  %s share prices updated at $%s",
		stock.Name, stock.Name, money(stock.CurrentPrice)))
}

func (c *Console) OnTraderDone(traderID int, orders int) {
	c.println(fmt.Sprintf("Trader %d has completed placing %d orders.", traderID, orders))
}

func (c *Console) newsStyle(news domain.MarketNews) lipgloss.Style {
	switch news {
	case domain.NewsGood:
		return c.goodStyle
	case domain.NewsBad:
		return c.badStyle
	default:
		return c.neutralStyle
	}
}

// money formats a price with two decimals.
func money(price float64) string {
	return decimal.NewFromFloat(price).StringFixed(2)
}
