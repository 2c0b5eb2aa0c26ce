package domain

// OrderQueue is the queue name orders travel on.
const OrderQueue = "stock_order"

// Activity is the trader's side of an order.
type Activity string

const (
	ActivityBuy  Activity = "buy"
	ActivitySell Activity = "sell"
)

// Order is the wire payload: a snapshot of one stock's name and price.
// It is created by a trader and consumed once by the broker.
type Order struct {
	StockName    string  `json:"stock_name"`
	CurrentPrice float64 `json:"current_price"`
}

// OrderFromStock snapshots a stock into an order.
func OrderFromStock(s Stock) Order {
	return Order{StockName: s.Name, CurrentPrice: s.CurrentPrice}
}

// Stock returns the stock state carried by the order.
func (o Order) Stock() Stock {
	return Stock{Name: o.StockName, CurrentPrice: o.CurrentPrice}
}
