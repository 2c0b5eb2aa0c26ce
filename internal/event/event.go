package event

import (
	"time"

	"stock_sim/internal/domain"

	"github.com/bytedance/sonic"
)

// Type identifies a feed event.
type Type string

const (
	TypeFactors      Type = "factors"
	TypeOrderApplied Type = "order_applied"
	TypeRunFinished  Type = "run_finished"
)

// Envelope is the frame pushed to feed subscribers.
type Envelope struct {
	Type Type        `json:"type"`
	Ts   int64       `json:"ts"` // unix millis
	Data interface{} `json:"data"`
}

// FactorsEvent is emitted when a trader commits new market factors.
type FactorsEvent struct {
	TraderID int                  `json:"trader_id"`
	Factors  domain.MarketFactors `json:"factors"`
	News     string               `json:"news"`
}

// OrderAppliedEvent is emitted when the broker applies an order to its ledger.
type OrderAppliedEvent struct {
	StockName    string  `json:"stock_name"`
	CurrentPrice float64 `json:"current_price"`
}

// RunFinishedEvent is emitted once per run after every worker has stopped.
type RunFinishedEvent struct {
	RunID     string `json:"run_id"`
	Completed uint64 `json:"completed"`
	Quota     uint64 `json:"quota"`
}

// NewEnvelope stamps data with the current time.
func NewEnvelope(t Type, data interface{}) Envelope {
	return Envelope{Type: t, Ts: time.Now().UnixMilli(), Data: data}
}

// Encode serializes an envelope for the wire.
func Encode(e Envelope) ([]byte, error) {
	return sonic.ConfigFastest.Marshal(e)
}
