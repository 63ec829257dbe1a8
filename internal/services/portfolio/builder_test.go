package portfolio

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svimtrade/janus/internal/entity"
	"github.com/svimtrade/janus/internal/registry"
)

const (
	aaplAddr = "0x46b979440AC257151eE5a5bC9597B76386907Fa1"
	usdcAddr = "0xaf88d065e77c8cC2239327C5EDb3A432268e5831"
)

func rawHolding(address, raw string) entity.RawHolding {
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		panic("bad raw amount in test: " + raw)
	}
	return entity.RawHolding{Address: address, Raw: v}
}

func TestBuildSnapshot_ScalesByTokenDecimals(t *testing.T) {
	reg := registry.Default()

	holdings := []entity.RawHolding{
		rawHolding(aaplAddr, "10500000000000000000"), // 10.5 shares at 18 decimals
		rawHolding(usdcAddr, "1000500000"),           // 1000.50 USDC at 6 decimals
	}

	snapshot := BuildSnapshot(holdings, reg)

	require.Len(t, snapshot.Positions, 1)
	assert.Equal(t, "10.5", snapshot.Quantity("AAPL").String())
	assert.Equal(t, "1000.5", snapshot.Cash.String())
	assert.True(t, snapshot.Source.OnChain())
	assert.Equal(t, int64(-1), snapshot.ModeMarker())
}

func TestBuildSnapshot_Deterministic(t *testing.T) {
	reg := registry.Default()
	holdings := []entity.RawHolding{
		rawHolding(aaplAddr, "10500000000000000000"),
		rawHolding(usdcAddr, "1000500000"),
	}

	first := BuildSnapshot(holdings, reg)
	second := BuildSnapshot(holdings, reg)

	assert.Equal(t, first.Positions, second.Positions)
	assert.True(t, first.Cash.Equal(second.Cash))
	assert.Equal(t, first.Source, second.Source)
}

func TestBuildSnapshot_SkipsUnknownTokens(t *testing.T) {
	reg := registry.Default()

	holdings := []entity.RawHolding{
		rawHolding("0x1111111111111111111111111111111111111111", "999999999999999999"),
		rawHolding(usdcAddr, "2000000"),
	}

	snapshot := BuildSnapshot(holdings, reg)

	assert.Empty(t, snapshot.Positions)
	assert.Equal(t, "2", snapshot.Cash.String())
}

func TestBuildSnapshot_OmitsZeroBalances(t *testing.T) {
	reg := registry.Default()

	holdings := []entity.RawHolding{
		rawHolding(aaplAddr, "0"),
		rawHolding(usdcAddr, "0"),
	}

	snapshot := BuildSnapshot(holdings, reg)

	assert.Empty(t, snapshot.Positions)
	assert.True(t, snapshot.Cash.IsZero())
}

func TestBuildSnapshot_AddressCaseInsensitive(t *testing.T) {
	reg := registry.Default()

	holdings := []entity.RawHolding{
		rawHolding("0x46B979440AC257151EE5A5BC9597B76386907FA1", "1000000000000000000"),
	}

	snapshot := BuildSnapshot(holdings, reg)

	assert.Equal(t, "1", snapshot.Quantity("AAPL").String())
}

func TestBuildSnapshot_MergesDuplicateAddresses(t *testing.T) {
	reg := registry.Default()

	holdings := []entity.RawHolding{
		rawHolding(aaplAddr, "1000000000000000000"),
		rawHolding("0x46B979440ac257151ee5a5bc9597b76386907fa1", "500000000000000000"),
	}

	snapshot := BuildSnapshot(holdings, reg)

	assert.Equal(t, "1.5", snapshot.Quantity("AAPL").String())
}

func TestBuildSnapshot_NilRawSkipped(t *testing.T) {
	reg := registry.Default()

	snapshot := BuildSnapshot([]entity.RawHolding{{Address: aaplAddr}}, reg)

	assert.Empty(t, snapshot.Positions)
}
