package entity

// OrderResult reports the outcome of a routed trade intent. Ledger
// trades carry the new record id; on-chain trades carry the
// transaction hash of the dispatched transfer.
type OrderResult struct {
	ID       string
	Mode     Mode
	TxHash   string
	LedgerID uint64
	Snapshot *Snapshot
}
