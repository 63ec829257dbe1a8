package order

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/svimtrade/janus/internal/entity"
	"github.com/svimtrade/janus/internal/registry"
)

type fakeTransmitter struct {
	token     string
	recipient string
	amount    *big.Int
	memo      []byte
	err       error
	calls     int
}

func (f *fakeTransmitter) SendTokenWithMemo(_ context.Context, token, recipient string, amount *big.Int, memo []byte) (string, error) {
	f.calls++
	f.token = token
	f.recipient = recipient
	f.amount = amount
	f.memo = memo
	if f.err != nil {
		return "", f.err
	}
	return "0xtxhash", nil
}

type memLedger struct {
	records []entity.LedgerRecord
	err     error
}

func (m *memLedger) Latest() (*entity.LedgerRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.records) == 0 {
		return nil, nil
	}
	rec := m.records[len(m.records)-1]
	return &rec, nil
}

func (m *memLedger) Append(rec entity.LedgerRecord) (uint64, error) {
	if m.err != nil {
		return 0, m.err
	}
	rec.ID = uint64(len(m.records) + 1)
	m.records = append(m.records, rec)
	return rec.ID, nil
}

type staticMode entity.Mode

func (m staticMode) Mode() entity.Mode { return entity.Mode(m) }

func seededLedger(cash string, positions map[string]string) *memLedger {
	pos := make(map[string]decimal.Decimal, len(positions))
	for symbol, qty := range positions {
		pos[symbol] = decimal.RequireFromString(qty)
	}
	return &memLedger{records: []entity.LedgerRecord{{
		ID:        1,
		Action:    entity.LedgerActionInit,
		Positions: pos,
		Cash:      decimal.RequireFromString(cash),
		Timestamp: time.Now().UTC(),
	}}}
}

const wallet = "0x1234567890abcdef1234567890abcdef12345678"

func TestRouter_OnChainBuy_MemoAndTransfer(t *testing.T) {
	reg := registry.Default()
	tx := &fakeTransmitter{}
	ledger := seededLedger("10000", nil)

	router := NewRouter(zap.NewNop(), reg, ledger, tx, staticMode(entity.ModeOnChain), wallet)

	result, err := router.Buy(context.Background(), "AAPL",
		decimal.NewFromInt(10), decimal.NewFromInt(150), 0)
	require.NoError(t, err)

	require.Equal(t, 1, tx.calls)

	cash := reg.CashToken()
	assert.Equal(t, cash.Address, tx.token)
	assert.Equal(t, registry.OrderBookAddress, tx.recipient)
	assert.Equal(t, "1500000000", tx.amount.String()) // 1500 USDC at 6 decimals

	memo, err := DecodeMemo(tx.memo)
	require.NoError(t, err)
	assert.Equal(t, wallet, memo.DID)
	assert.Equal(t, "10000000000000000000", memo.Request) // 10 shares at 18 decimals
	assert.Equal(t, "1500000000", memo.Offer)
	assert.Equal(t, entity.OrderTypeLimit, memo.Type)
	assert.Equal(t, entity.CustomerTag, memo.CustomerID)
	assert.Equal(t, entity.DefaultExpiryDays, memo.ExpiryDays)

	desc, _ := reg.BySymbol("AAPL")
	assert.Equal(t, desc.Address, memo.TokenAddress)

	assert.Equal(t, entity.ModeOnChain, result.Mode)
	assert.Equal(t, "0xtxhash", result.TxHash)
	assert.NotEmpty(t, result.ID)

	// the on-chain path never writes the ledger
	assert.Len(t, ledger.records, 1)
}

func TestRouter_OnChainSell_OffersStockToken(t *testing.T) {
	reg := registry.Default()
	tx := &fakeTransmitter{}

	router := NewRouter(zap.NewNop(), reg, seededLedger("0", nil), tx, staticMode(entity.ModeOnChain), wallet)

	_, err := router.Sell(context.Background(), "TSLA",
		decimal.RequireFromString("2.5"), decimal.NewFromInt(200), 5)
	require.NoError(t, err)

	desc, _ := reg.BySymbol("TSLA")
	assert.Equal(t, desc.Address, tx.token)
	assert.Equal(t, "2500000000000000000", tx.amount.String())

	memo, err := DecodeMemo(tx.memo)
	require.NoError(t, err)
	assert.Equal(t, "500000000", memo.Request) // 2.5 * 200 USDC
	assert.Equal(t, "2500000000000000000", memo.Offer)
	assert.Equal(t, 5, memo.ExpiryDays)
}

func TestRouter_OnChainTransferFailure_LeavesLedgerUntouched(t *testing.T) {
	reg := registry.Default()
	tx := &fakeTransmitter{err: entity.Tag(entity.ErrTransfer, errors.New("nonce too low"))}
	ledger := seededLedger("10000", map[string]string{"AAPL": "5"})

	router := NewRouter(zap.NewNop(), reg, ledger, tx, staticMode(entity.ModeOnChain), wallet)

	_, err := router.Sell(context.Background(), "AAPL",
		decimal.NewFromInt(1), decimal.NewFromInt(100), 0)
	require.Error(t, err)

	assert.True(t, errors.Is(err, entity.ErrRouting))
	assert.True(t, errors.Is(err, entity.ErrTransfer))
	assert.Len(t, ledger.records, 1)
}

func TestRouter_OnChainWithoutTransmitter(t *testing.T) {
	router := NewRouter(zap.NewNop(), registry.Default(), seededLedger("10000", nil), nil, staticMode(entity.ModeOnChain), wallet)

	_, err := router.Buy(context.Background(), "AAPL",
		decimal.NewFromInt(1), decimal.NewFromInt(100), 0)
	assert.True(t, errors.Is(err, entity.ErrConfiguration))
}

func TestRouter_LedgerBuy(t *testing.T) {
	ledger := seededLedger("10000", nil)
	router := NewRouter(zap.NewNop(), registry.Default(), ledger, nil, staticMode(entity.ModeLedger), "")

	result, err := router.Buy(context.Background(), "AAPL",
		decimal.NewFromInt(10), decimal.NewFromInt(150), 0)
	require.NoError(t, err)

	assert.Equal(t, entity.ModeLedger, result.Mode)
	assert.Equal(t, uint64(2), result.LedgerID)
	assert.Equal(t, "10", result.Snapshot.Quantity("AAPL").String())
	assert.Equal(t, "8500", result.Snapshot.Cash.String())
	assert.Equal(t, int64(2), result.Snapshot.ModeMarker())

	latest, err := ledger.Latest()
	require.NoError(t, err)
	assert.Equal(t, entity.LedgerActionBuy, latest.Action)
	assert.Equal(t, "AAPL", latest.Symbol)
}

func TestRouter_LedgerSell(t *testing.T) {
	ledger := seededLedger("1000", map[string]string{"TSLA": "4"})
	router := NewRouter(zap.NewNop(), registry.Default(), ledger, nil, staticMode(entity.ModeLedger), "")

	result, err := router.Sell(context.Background(), "TSLA",
		decimal.RequireFromString("1.5"), decimal.NewFromInt(200), 0)
	require.NoError(t, err)

	assert.Equal(t, "2.5", result.Snapshot.Quantity("TSLA").String())
	assert.Equal(t, "1300", result.Snapshot.Cash.String())
}

func TestRouter_LedgerSellEntirePosition_RemovesSymbol(t *testing.T) {
	ledger := seededLedger("0", map[string]string{"TSLA": "4"})
	router := NewRouter(zap.NewNop(), registry.Default(), ledger, nil, staticMode(entity.ModeLedger), "")

	result, err := router.Sell(context.Background(), "TSLA",
		decimal.NewFromInt(4), decimal.NewFromInt(100), 0)
	require.NoError(t, err)

	assert.NotContains(t, result.Snapshot.Positions, "TSLA")
	assert.Equal(t, "400", result.Snapshot.Cash.String())
}

func TestRouter_LedgerInsufficientFunds(t *testing.T) {
	router := NewRouter(zap.NewNop(), registry.Default(), seededLedger("100", map[string]string{"AAPL": "1"}), nil, staticMode(entity.ModeLedger), "")

	_, err := router.Buy(context.Background(), "AAPL",
		decimal.NewFromInt(10), decimal.NewFromInt(150), 0)
	assert.True(t, errors.Is(err, entity.ErrValidation))

	_, err = router.Sell(context.Background(), "AAPL",
		decimal.NewFromInt(2), decimal.NewFromInt(150), 0)
	assert.True(t, errors.Is(err, entity.ErrValidation))
}

func TestRouter_RejectsBadIntents(t *testing.T) {
	router := NewRouter(zap.NewNop(), registry.Default(), seededLedger("10000", nil), nil, staticMode(entity.ModeLedger), "")

	_, err := router.Buy(context.Background(), "DOGE",
		decimal.NewFromInt(1), decimal.NewFromInt(1), 0)
	assert.True(t, errors.Is(err, entity.ErrValidation))

	_, err = router.Buy(context.Background(), "USDC",
		decimal.NewFromInt(1), decimal.NewFromInt(1), 0)
	assert.True(t, errors.Is(err, entity.ErrValidation))

	_, err = router.Buy(context.Background(), "AAPL",
		decimal.Zero, decimal.NewFromInt(1), 0)
	assert.True(t, errors.Is(err, entity.ErrValidation))

	_, err = router.Buy(context.Background(), "AAPL",
		decimal.NewFromInt(1), decimal.NewFromInt(-5), 0)
	assert.True(t, errors.Is(err, entity.ErrValidation))
}
