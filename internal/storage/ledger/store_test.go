package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svimtrade/janus/internal/entity"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_EmptyLatestIsNil(t *testing.T) {
	store := newStore(t)

	latest, err := store.Latest()
	require.NoError(t, err)
	assert.Nil(t, latest)
	assert.Zero(t, store.CurrentIndex())
}

func TestStore_InitIfEmpty(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.InitIfEmpty(decimal.NewFromInt(10000)))

	latest, err := store.Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, entity.LedgerActionInit, latest.Action)
	assert.Equal(t, "10000", latest.Cash.String())
	assert.Empty(t, latest.Positions)

	// second call is a no-op on a seeded ledger
	require.NoError(t, store.InitIfEmpty(decimal.NewFromInt(99999)))
	latest, err = store.Latest()
	require.NoError(t, err)
	assert.Equal(t, "10000", latest.Cash.String())
	assert.Equal(t, uint64(1), store.CurrentIndex())
}

func TestStore_AppendAssignsMonotonicIDs(t *testing.T) {
	store := newStore(t)

	for i := 1; i <= 5; i++ {
		id, err := store.Append(entity.LedgerRecord{
			Action:    entity.LedgerActionBuy,
			Symbol:    "AAPL",
			Quantity:  decimal.NewFromInt(1),
			Positions: map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(int64(i))},
			Cash:      decimal.NewFromInt(int64(10000 - i*150)),
			Timestamp: time.Now().UTC(),
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(i), id)
	}

	latest, err := store.Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, uint64(5), latest.ID)
	assert.Equal(t, "5", latest.Positions["AAPL"].String())
	assert.Equal(t, "9250", latest.Cash.String())
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, store.InitIfEmpty(decimal.NewFromInt(500)))
	_, err = store.Append(entity.LedgerRecord{
		Action:    entity.LedgerActionBuy,
		Symbol:    "TSLA",
		Quantity:  decimal.NewFromInt(2),
		Positions: map[string]decimal.Decimal{"TSLA": decimal.NewFromInt(2)},
		Cash:      decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := New(dir)
	require.NoError(t, err)
	defer reopened.Close()

	latest, err := reopened.Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, uint64(2), latest.ID)
	assert.Equal(t, "TSLA", latest.Symbol)
	assert.Equal(t, "100", latest.Cash.String())
}

func TestStore_ToSnapshotOmitsZeroPositions(t *testing.T) {
	store := newStore(t)

	_, err := store.Append(entity.LedgerRecord{
		Action: entity.LedgerActionSell,
		Symbol: "AAPL",
		Positions: map[string]decimal.Decimal{
			"AAPL": decimal.Zero,
			"TSLA": decimal.NewFromInt(3),
		},
		Cash: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	latest, err := store.Latest()
	require.NoError(t, err)

	snapshot := latest.ToSnapshot()
	assert.NotContains(t, snapshot.Positions, "AAPL")
	assert.Equal(t, "3", snapshot.Quantity("TSLA").String())
	assert.Equal(t, int64(1), snapshot.ModeMarker())
}

func TestStore_Uninitialized(t *testing.T) {
	var store *Store

	_, err := store.Latest()
	assert.Error(t, err)

	_, err = store.Append(entity.LedgerRecord{})
	assert.Error(t, err)
}
