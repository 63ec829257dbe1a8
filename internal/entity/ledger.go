package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerAction is the kind of event recorded in the position ledger.
type LedgerAction string

const (
	LedgerActionInit LedgerAction = "init"
	LedgerActionBuy  LedgerAction = "buy"
	LedgerActionSell LedgerAction = "sell"
)

// LedgerRecord is one entry of the append-only position ledger.
// Records carry both the applied delta and the resulting totals so the
// read path only needs the newest record. IDs increase monotonically.
type LedgerRecord struct {
	ID        uint64                     `json:"id"`
	Action    LedgerAction               `json:"action"`
	Symbol    string                     `json:"symbol,omitempty"`
	Quantity  decimal.Decimal            `json:"quantity"`
	Positions map[string]decimal.Decimal `json:"positions"`
	Cash      decimal.Decimal            `json:"cash"`
	Timestamp time.Time                  `json:"timestamp"`
}

// ToSnapshot converts the record's resulting totals into a
// ledger-sourced snapshot. Zero quantities are omitted, matching the
// on-chain builder's convention.
func (r *LedgerRecord) ToSnapshot() *Snapshot {
	positions := make(map[string]decimal.Decimal, len(r.Positions))
	for symbol, qty := range r.Positions {
		if qty.IsZero() {
			continue
		}
		positions[symbol] = qty
	}
	return &Snapshot{
		Positions: positions,
		Cash:      r.Cash,
		Source:    LedgerSource(r.ID),
	}
}
