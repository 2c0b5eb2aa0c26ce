package event

import (
	"errors"
	"math"

	"stock_sim/internal/domain"

	"github.com/bytedance/sonic"
)

var (
	errMissingName  = errors.New("missing stock_name")
	errMissingPrice = errors.New("missing current_price")
	errInvalidPrice = errors.New("current_price is not a finite number")
)

// wireOrder tells an absent or null field apart from a zero value.
type wireOrder struct {
	StockName    *string  `json:"stock_name"`
	CurrentPrice *float64 `json:"current_price"`
}

// EncodeOrder serializes an order into its wire form:
// {"stock_name":"NIKE","current_price":1575.0}
func EncodeOrder(o domain.Order) (string, error) {
	if math.IsNaN(o.CurrentPrice) || math.IsInf(o.CurrentPrice, 0) {
		return "", errInvalidPrice
	}
	return sonic.ConfigFastest.MarshalToString(o)
}

// DecodeOrder parses a wire payload into an order.
func DecodeOrder(payload string) (domain.Order, error) {
	var o domain.Order
	err := DecodeOrderInto(payload, &o)
	return o, err
}

// DecodeOrderInto parses a wire payload into o. Both fields are required.
// Failures are returned as *domain.OrderDecodeError and leave o untouched.
func DecodeOrderInto(payload string, o *domain.Order) error {
	if payload == "" {
		return &domain.OrderDecodeError{Payload: payload, Err: domain.ErrEmptyPayload}
	}

	var w wireOrder
	if err := sonic.UnmarshalString(payload, &w); err != nil {
		return &domain.OrderDecodeError{Payload: payload, Err: err}
	}
	if w.StockName == nil || *w.StockName == "" {
		return &domain.OrderDecodeError{Payload: payload, Err: errMissingName}
	}
	if w.CurrentPrice == nil {
		return &domain.OrderDecodeError{Payload: payload, Err: errMissingPrice}
	}

	o.StockName = *w.StockName
	o.CurrentPrice = *w.CurrentPrice
	return nil
}
