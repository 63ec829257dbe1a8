package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/svimtrade/janus/internal/entity"
	"github.com/svimtrade/janus/internal/registry"
)

// BuildSnapshot converts raw holdings into an on-chain position
// snapshot. Pure function: identical inputs yield identical snapshots.
//
// Holdings whose contract address is not in the registry are discarded
// (untracked tokens are not an error). Zero-quantity holdings are
// omitted. Raw amounts are scaled by the token's own decimals with
// exact decimal arithmetic; nothing is routed through floats.
func BuildSnapshot(holdings []entity.RawHolding, reg *registry.Registry) *entity.Snapshot {
	snapshot := &entity.Snapshot{
		Positions: make(map[string]decimal.Decimal),
		Cash:      decimal.Zero,
		Source:    entity.OnChainSource(),
	}

	for _, h := range holdings {
		desc, ok := reg.ByAddress(h.Address)
		if !ok || h.Raw == nil {
			continue
		}

		qty := decimal.NewFromBigInt(h.Raw, -desc.Decimals)
		if qty.IsZero() {
			continue
		}

		if desc.Cash {
			snapshot.Cash = snapshot.Cash.Add(qty)
			continue
		}
		snapshot.Positions[desc.Symbol] = snapshot.Positions[desc.Symbol].Add(qty)
	}

	return snapshot
}
