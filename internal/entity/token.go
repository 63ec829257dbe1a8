package entity

import (
	"math/big"
	"strings"
)

// TokenDescriptor describes one tracked token contract. Addresses are
// canonicalized to lowercase so lookups are case-insensitive.
// Exactly one descriptor per registry is flagged as the cash token.
type TokenDescriptor struct {
	Symbol   string `yaml:"symbol"`
	Address  string `yaml:"address"`
	Decimals int32  `yaml:"decimals"`
	Cash     bool   `yaml:"cash,omitempty"`
}

// CanonicalAddress lowercases a hex contract address.
func CanonicalAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// RawHolding is a token balance as returned by the balance provider,
// before decimal conversion.
type RawHolding struct {
	Address string
	Raw     *big.Int
}
