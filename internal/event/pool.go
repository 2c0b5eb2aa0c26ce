package event

import (
	"sync"

	"stock_sim/internal/domain"
)

// orderPool recycles decoded orders on the broker's hot path.
//
// Usage:
//
//	o := AcquireOrder()
//	defer ReleaseOrder(o)
//	if err := DecodeOrderInto(payload, o); err != nil { ... }
var orderPool = sync.Pool{
	New: func() interface{} {
		return &domain.Order{}
	},
}

// AcquireOrder gets an Order from the pool.
// The returned order has zero values.
func AcquireOrder() *domain.Order {
	return orderPool.Get().(*domain.Order)
}

// ReleaseOrder resets an Order and returns it to the pool.
func ReleaseOrder(o *domain.Order) {
	if o == nil {
		return
	}
	o.StockName = ""
	o.CurrentPrice = 0

	orderPool.Put(o)
}

// Warmup pre-allocates orders so the first polls do not allocate.
func Warmup(n int) {
	orders := make([]*domain.Order, 0, n)
	for i := 0; i < n; i++ {
		orders = append(orders, AcquireOrder())
	}
	for _, o := range orders {
		ReleaseOrder(o)
	}
}
