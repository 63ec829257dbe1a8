package entity

import "github.com/shopspring/decimal"

// Mode is the authoritative source for position data.
type Mode int

const (
	// ModeLedger reads and mutates the local append-only ledger.
	ModeLedger Mode = iota
	// ModeOnChain reads live wallet balances and dispatches transfers.
	ModeOnChain
)

func (m Mode) String() string {
	if m == ModeOnChain {
		return "on-chain"
	}
	return "ledger"
}

// SnapshotSource tells which backend produced a snapshot. On-chain
// snapshots carry no ledger identity; ledger snapshots carry the id of
// the last applied record.
type SnapshotSource struct {
	onChain bool
	lastID  uint64
}

// OnChainSource marks a snapshot as derived solely from wallet state.
func OnChainSource() SnapshotSource {
	return SnapshotSource{onChain: true}
}

// LedgerSource marks a snapshot as derived from the ledger record lastID.
func LedgerSource(lastID uint64) SnapshotSource {
	return SnapshotSource{lastID: lastID}
}

func (s SnapshotSource) OnChain() bool { return s.onChain }

// LedgerID returns the last applied ledger record id. ok is false for
// on-chain snapshots.
func (s SnapshotSource) LedgerID() (uint64, bool) {
	if s.onChain {
		return 0, false
	}
	return s.lastID, true
}

// ModeMarker preserves the integer convention of the query surface:
// -1 for on-chain snapshots, the last ledger record id otherwise.
func (s SnapshotSource) ModeMarker() int64 {
	if s.onChain {
		return -1
	}
	return int64(s.lastID)
}

// Snapshot is the portfolio view produced on each call. Positions maps
// symbol to a non-negative quantity; Cash is the cash-equivalent token
// balance. Snapshots are values, never cached across calls.
type Snapshot struct {
	Positions map[string]decimal.Decimal
	Cash      decimal.Decimal
	Source    SnapshotSource
}

// ModeMarker reports the snapshot's source as the legacy integer sentinel.
func (s *Snapshot) ModeMarker() int64 { return s.Source.ModeMarker() }

// Quantity returns the held quantity for symbol, zero when absent.
func (s *Snapshot) Quantity(symbol string) decimal.Decimal {
	if q, ok := s.Positions[symbol]; ok {
		return q
	}
	return decimal.Zero
}
