package entity

const (
	// OrderTypeLimit is the only order type this system constructs.
	OrderTypeLimit = "LIMIT"
	// CustomerTag identifies orders from this agent to the off-chain
	// matching service.
	CustomerTag = "SVIM"
)

// OrderMemo carries limit-order parameters inside the transfer's memo
// field. Amounts are base units rendered as decimal strings so the
// matching service never loses precision. Constructed fresh per trade
// intent, transmitted once, never persisted.
type OrderMemo struct {
	DID          string `json:"did_id"`
	Request      string `json:"request"`
	Offer        string `json:"offer"`
	Type         string `json:"type"`
	TokenAddress string `json:"token_address"`
	CustomerID   string `json:"customer_id"`
	ExpiryDays   int    `json:"expiry_days"`
}
