package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"stock_sim/internal/domain"
	"stock_sim/internal/infra"
	"stock_sim/internal/infra/queue"

	"golang.org/x/sync/errgroup"
)

// runMarket wires numTraders traders and one broker over a memory channel
// and runs them to completion.
func runMarket(t testing.TB, numTraders, ordersPerTrader int, seed uint64) (*StockLedger, *Broker, *Coordinator, *infra.Metrics) {
	stocks := defaultStocks()
	traderLedger := NewStockLedger(stocks)
	brokerLedger := traderLedger.Clone()
	factors := NewMarketFactorState(domain.NewMarketFactors(6.0, 2.5))
	coord := NewCoordinator(uint64(numTraders * ordersPerTrader))
	channel := queue.NewMemory()
	metrics := infra.NewMetrics()

	broker := NewBroker(BrokerConfig{MinBackoff: time.Microsecond, MaxBackoff: time.Millisecond}, BrokerDeps{
		Ledger:  brokerLedger,
		Coord:   coord,
		Channel: channel,
		Metrics: metrics,
	})

	ctx := context.Background()
	var brokerGroup errgroup.Group
	brokerGroup.Go(func() error { return broker.Run(ctx) })

	var traders errgroup.Group
	for id := 0; id < numTraders; id++ {
		tr := NewTrader(TraderConfig{
			ID:                      id,
			Orders:                  ordersPerTrader,
			FactorUpdateProbability: 0.4,
		}, TraderDeps{
			Ledger:  traderLedger,
			Factors: factors,
			Coord:   coord,
			Channel: channel,
			Rand:    infra.NewRandomSource(seed + uint64(id)),
			Sleeper: noSleep{},
			Metrics: metrics,
		})
		traders.Go(func() error { return tr.Run(ctx) })
	}

	if err := traders.Wait(); err != nil {
		t.Fatalf("trader failed: %v", err)
	}
	coord.RequestStop()
	if err := brokerGroup.Wait(); err != nil {
		t.Fatalf("broker failed: %v", err)
	}
	return traderLedger, broker, coord, metrics
}

func TestSimulation_FiveTradersTwentyOrders(t *testing.T) {
	for _, seed := range []uint64{1, 2, 3, 42} {
		traderLedger, broker, coord, metrics := runMarket(t, 5, 20, seed)

		if coord.Completed() != 100 {
			t.Errorf("seed %d: expected exactly 100 orders, got %d", seed, coord.Completed())
		}
		if !coord.ShouldStop() {
			t.Errorf("seed %d: stop flag not set", seed)
		}
		if broker.Applied() != 100 {
			t.Errorf("seed %d: broker applied %d of 100", seed, broker.Applied())
		}

		snap := metrics.Snapshot()
		if snap.OrdersSubmitted != 100 || snap.SendFailures != 0 {
			t.Errorf("seed %d: unexpected metrics %+v", seed, snap)
		}

		for _, ledger := range []*StockLedger{traderLedger, broker.Ledger} {
			for _, s := range ledger.Snapshot() {
				if math.IsNaN(s.CurrentPrice) || math.IsInf(s.CurrentPrice, 0) || s.CurrentPrice <= 0 {
					t.Errorf("seed %d: invalid price %+v", seed, s)
				}
			}
		}
	}
}

func TestSimulation_SingleTraderBrokerMirrorsLedger(t *testing.T) {
	// With one trader, send order equals mutation order, so the broker ends
	// with exactly the trader's prices.
	traderLedger, broker, _, _ := runMarket(t, 1, 50, 7)

	want := traderLedger.Snapshot()
	got := broker.Ledger.Snapshot()
	for i := range want {
		if want[i].Name != got[i].Name || math.Abs(want[i].CurrentPrice-got[i].CurrentPrice) > 1e-6 {
			t.Errorf("stock %d: trader %+v, broker %+v", i, want[i], got[i])
		}
	}
}
