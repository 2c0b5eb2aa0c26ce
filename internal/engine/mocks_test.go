package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"stock_sim/internal/domain"
)

// scriptedRand replays fixed draws, then falls back to 0.5 / 0.
type scriptedRand struct {
	Floats []float64
	Ints   []int
}

func (r *scriptedRand) Float64() float64 {
	if len(r.Floats) == 0 {
		return 0.5
	}
	f := r.Floats[0]
	r.Floats = r.Floats[1:]
	return f
}

func (r *scriptedRand) IntN(n int) int {
	if len(r.Ints) == 0 {
		return 0
	}
	i := r.Ints[0] % n
	r.Ints = r.Ints[1:]
	return i
}

// noSleep returns immediately unless ctx is done.
type noSleep struct{}

func (noSleep) Sleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// recordingSleeper records requested durations.
type recordingSleeper struct {
	mu    sync.Mutex
	Slept  []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.Slept = append(s.Slept, d)
	s.mu.Unlock()
	return ctx.Err()
}

type recordingObserver struct {
	mu        sync.Mutex
	Factors   []domain.MarketFactors
	News      []domain.MarketNews
	Submitted []domain.Stock
	Applied   []domain.Stock
	Done      map[int]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{Done: make(map[int]int)}
}

func (o *recordingObserver) OnFactors(_ int, f domain.MarketFactors, n domain.MarketNews) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Factors = append(o.Factors, f)
	o.News = append(o.News, n)
}

func (o *recordingObserver) OnOrderSubmitted(_ int, _ domain.Activity, s domain.Stock) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Submitted = append(o.Submitted, s)
}

func (o *recordingObserver) OnOrderApplied(s domain.Stock) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Applied = append(o.Applied, s)
}

func (o *recordingObserver) OnTraderDone(id int, orders int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Done[id] = orders
}

// failingChannel fails every send and consume.
type failingChannel struct{}

var errBrokerDown = errors.New("broker down")

func (failingChannel) Send(context.Context, string, string) error {
	return domain.NewQueueError("send", domain.OrderQueue, errBrokerDown)
}

func (failingChannel) Consume(context.Context, string) (string, error) {
	return "", domain.NewQueueError("consume", domain.OrderQueue, errBrokerDown)
}

func (failingChannel) Close() error { return nil }

// scriptedChannel replays consume results in order ("" is an empty poll),
// then keeps reporting empty polls.
type scriptedChannel struct {
	mu       sync.Mutex
	payloads []string
	polls    int
}

func (c *scriptedChannel) Send(context.Context, string, string) error { return nil }

func (c *scriptedChannel) Consume(context.Context, string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.polls++
	if len(c.payloads) == 0 {
		return "", nil
	}
	p := c.payloads[0]
	c.payloads = c.payloads[1:]
	return p, nil
}

func (c *scriptedChannel) Close() error { return nil }

type recordingJournal struct {
	mu      sync.Mutex
	RunIDs  []string
	Stocks  []domain.Stock
	FailErr error
}

func (j *recordingJournal) RecordApplied(_ context.Context, runID string, s domain.Stock) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.FailErr != nil {
		return j.FailErr
	}
	j.RunIDs = append(j.RunIDs, runID)
	j.Stocks = append(j.Stocks, s)
	return nil
}

// panickingObserver blows up when an order is applied.
type panickingObserver struct{ nopObserver }

func (panickingObserver) OnOrderApplied(domain.Stock) {
	panic("observer exploded")
}

func defaultStocks() []domain.Stock {
	return []domain.Stock{
		domain.NewStock("NIKE", 1500.0),
		domain.NewStock("ADIDAS", 2500.0),
		domain.NewStock("PUMA", 3300.0),
		domain.NewStock("YONEX", 3000.0),
		domain.NewStock("LINING", 4500.0),
	}
}
