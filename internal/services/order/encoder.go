package order

import (
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"

	"github.com/svimtrade/janus/internal/entity"
)

// EncodeMemo builds the limit-order memo for one trade intent.
// Deterministic pure function: same inputs always produce the same
// memo. Amounts arrive already converted to base units; requested is
// what the order asks for, offered is what the transfer carries.
func EncodeMemo(intent entity.TradeIntent, requested, offered *big.Int, wallet, tokenAddress string) (entity.OrderMemo, error) {
	if intent.ExpiryDays == 0 {
		intent.ExpiryDays = entity.DefaultExpiryDays
	}
	if intent.ExpiryDays < 0 {
		return entity.OrderMemo{}, entity.Tagf(entity.ErrValidation,
			"expiry days must be positive, got %d", intent.ExpiryDays)
	}
	if requested == nil || requested.Sign() <= 0 {
		return entity.OrderMemo{}, entity.Tagf(entity.ErrValidation, "requested amount must be positive")
	}
	if offered == nil || offered.Sign() <= 0 {
		return entity.OrderMemo{}, entity.Tagf(entity.ErrValidation, "offered amount must be positive")
	}

	return entity.OrderMemo{
		DID:          wallet,
		Request:      requested.String(),
		Offer:        offered.String(),
		Type:         entity.OrderTypeLimit,
		TokenAddress: tokenAddress,
		CustomerID:   entity.CustomerTag,
		ExpiryDays:   intent.ExpiryDays,
	}, nil
}

// MemoBytes serializes the memo to its wire form.
func MemoBytes(memo entity.OrderMemo) ([]byte, error) {
	raw, err := json.Marshal(memo)
	if err != nil {
		return nil, errors.Wrap(err, "marshal order memo")
	}
	return raw, nil
}

// DecodeMemo parses a wire-form memo back into its structured form.
func DecodeMemo(raw []byte) (entity.OrderMemo, error) {
	var memo entity.OrderMemo
	if err := json.Unmarshal(raw, &memo); err != nil {
		return entity.OrderMemo{}, errors.Wrap(err, "unmarshal order memo")
	}
	return memo, nil
}
