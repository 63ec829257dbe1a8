package entity

import (
	"github.com/shopspring/decimal"
)

// DefaultExpiryDays is applied when a trade intent does not override
// the limit-order expiry.
const DefaultExpiryDays = 2

// Side is the direction of a trade intent.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideSell {
		return "sell"
	}
	return "buy"
}

// TradeIntent is a request to trade a quantity of a symbol at a
// caller-supplied price. ExpiryDays of zero means "use the default".
type TradeIntent struct {
	Symbol     string
	Side       Side
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	ExpiryDays int
}

// Normalize applies the default expiry and validates the intent's own
// fields. Symbol existence is checked by the router against the
// registry.
func (i TradeIntent) Normalize() (TradeIntent, error) {
	if i.ExpiryDays == 0 {
		i.ExpiryDays = DefaultExpiryDays
	}
	if i.Symbol == "" {
		return i, Tagf(ErrValidation, "symbol is required")
	}
	if !i.Quantity.IsPositive() {
		return i, Tagf(ErrValidation, "quantity must be positive, got %s", i.Quantity)
	}
	if !i.Price.IsPositive() {
		return i, Tagf(ErrValidation, "price must be positive, got %s", i.Price)
	}
	if i.ExpiryDays < 0 {
		return i, Tagf(ErrValidation, "expiry days must be positive, got %d", i.ExpiryDays)
	}
	return i, nil
}
