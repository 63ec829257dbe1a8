// Package order translates trade intents into either ledger mutations
// or correctly encoded on-chain limit-order transfers.
package order

import (
	"context"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/svimtrade/janus/internal/entity"
	"github.com/svimtrade/janus/internal/registry"
)

// TokenTransmitter dispatches a single token transfer carrying an
// opaque memo and returns the transaction identifier.
type TokenTransmitter interface {
	SendTokenWithMemo(ctx context.Context, tokenAddress, recipient string, amount *big.Int, memo []byte) (string, error)
}

// LedgerStore is the mutable view of the position ledger used by the
// ledger trade path. The store serializes appends internally.
type LedgerStore interface {
	Latest() (*entity.LedgerRecord, error)
	Append(rec entity.LedgerRecord) (uint64, error)
}

// ModeSelector decides the authoritative backend for the call.
type ModeSelector interface {
	Mode() entity.Mode
}

// Router routes a validated trade intent to one backend. An intent
// touches exactly one backend: on-chain dispatch failures leave the
// ledger untouched so the two states are never conflated.
type Router struct {
	logger      *zap.Logger
	registry    *registry.Registry
	ledger      LedgerStore
	transmitter TokenTransmitter
	selector    ModeSelector
	wallet      string
}

// NewRouter builds the order router. transmitter may be nil when the
// process has no transfer credentials; the on-chain path then fails
// with a configuration error instead of falling back.
func NewRouter(logger *zap.Logger, reg *registry.Registry, ledger LedgerStore, transmitter TokenTransmitter, selector ModeSelector, wallet string) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		logger:      logger,
		registry:    reg,
		ledger:      ledger,
		transmitter: transmitter,
		selector:    selector,
		wallet:      wallet,
	}
}

// Buy routes a buy intent. expiryDays of zero selects the default.
func (r *Router) Buy(ctx context.Context, symbol string, quantity, price decimal.Decimal, expiryDays int) (*entity.OrderResult, error) {
	return r.Route(ctx, entity.TradeIntent{
		Symbol:     symbol,
		Side:       entity.SideBuy,
		Quantity:   quantity,
		Price:      price,
		ExpiryDays: expiryDays,
	})
}

// Sell routes a sell intent. expiryDays of zero selects the default.
func (r *Router) Sell(ctx context.Context, symbol string, quantity, price decimal.Decimal, expiryDays int) (*entity.OrderResult, error) {
	return r.Route(ctx, entity.TradeIntent{
		Symbol:     symbol,
		Side:       entity.SideSell,
		Quantity:   quantity,
		Price:      price,
		ExpiryDays: expiryDays,
	})
}

// Route validates the intent and applies it to the mode-selected
// backend.
func (r *Router) Route(ctx context.Context, intent entity.TradeIntent) (*entity.OrderResult, error) {
	intent, err := intent.Normalize()
	if err != nil {
		return nil, err
	}

	desc, ok := r.registry.BySymbol(intent.Symbol)
	if !ok {
		return nil, entity.Tagf(entity.ErrValidation, "unknown symbol %s", intent.Symbol)
	}
	if desc.Cash {
		return nil, entity.Tagf(entity.ErrValidation, "cannot trade the cash token %s", intent.Symbol)
	}

	if r.selector.Mode() == entity.ModeOnChain {
		return r.routeOnChain(ctx, intent, desc)
	}
	return r.routeLedger(intent)
}

// routeLedger applies the intent as a single ledger append. The new
// record carries both the delta and the resulting totals.
func (r *Router) routeLedger(intent entity.TradeIntent) (*entity.OrderResult, error) {
	latest, err := r.ledger.Latest()
	if err != nil {
		return nil, entity.Tag(entity.ErrRouting, err)
	}

	positions := make(map[string]decimal.Decimal)
	cash := decimal.Zero
	if latest != nil {
		for symbol, qty := range latest.Positions {
			positions[symbol] = qty
		}
		cash = latest.Cash
	}

	cost := intent.Quantity.Mul(intent.Price)

	switch intent.Side {
	case entity.SideBuy:
		if cash.LessThan(cost) {
			return nil, entity.Tagf(entity.ErrValidation,
				"insufficient cash: have %s, need %s", cash, cost)
		}
		cash = cash.Sub(cost)
		positions[intent.Symbol] = positions[intent.Symbol].Add(intent.Quantity)
	case entity.SideSell:
		held := positions[intent.Symbol]
		if held.LessThan(intent.Quantity) {
			return nil, entity.Tagf(entity.ErrValidation,
				"insufficient shares of %s: have %s, want to sell %s", intent.Symbol, held, intent.Quantity)
		}
		cash = cash.Add(cost)
		remaining := held.Sub(intent.Quantity)
		if remaining.IsZero() {
			delete(positions, intent.Symbol)
		} else {
			positions[intent.Symbol] = remaining
		}
	}

	action := entity.LedgerActionBuy
	if intent.Side == entity.SideSell {
		action = entity.LedgerActionSell
	}

	rec := entity.LedgerRecord{
		Action:    action,
		Symbol:    intent.Symbol,
		Quantity:  intent.Quantity,
		Positions: positions,
		Cash:      cash,
		Timestamp: time.Now().UTC(),
	}

	id, err := r.ledger.Append(rec)
	if err != nil {
		return nil, entity.Tag(entity.ErrRouting, err)
	}
	rec.ID = id

	r.logger.Info("ledger trade applied",
		zap.String("side", intent.Side.String()),
		zap.String("symbol", intent.Symbol),
		zap.String("quantity", intent.Quantity.String()),
		zap.Uint64("ledger_id", id))

	return &entity.OrderResult{
		ID:       uuid.NewString(),
		Mode:     entity.ModeLedger,
		LedgerID: id,
		Snapshot: rec.ToSnapshot(),
	}, nil
}

// routeOnChain builds the limit-order memo and dispatches exactly one
// transfer to the order-book contract. A buy offers the cash token, a
// sell offers the stock token; the counterparty amount goes into the
// memo's request field. No ledger write happens on this path.
func (r *Router) routeOnChain(ctx context.Context, intent entity.TradeIntent, desc entity.TokenDescriptor) (*entity.OrderResult, error) {
	if r.transmitter == nil || r.wallet == "" {
		return nil, entity.Tagf(entity.ErrConfiguration,
			"on-chain trading requires a wallet and transfer credentials")
	}

	cashDesc := r.registry.CashToken()

	stockUnits := intent.Quantity.Shift(desc.Decimals).BigInt()
	cashUnits := intent.Quantity.Mul(intent.Price).Shift(cashDesc.Decimals).BigInt()

	var requested, offered *big.Int
	var sendToken string
	var sendAmount *big.Int
	switch intent.Side {
	case entity.SideBuy:
		requested, offered = stockUnits, cashUnits
		sendToken, sendAmount = cashDesc.Address, cashUnits
	case entity.SideSell:
		requested, offered = cashUnits, stockUnits
		sendToken, sendAmount = desc.Address, stockUnits
	}

	memo, err := EncodeMemo(intent, requested, offered, r.wallet, desc.Address)
	if err != nil {
		return nil, err
	}
	memoRaw, err := MemoBytes(memo)
	if err != nil {
		return nil, entity.Tag(entity.ErrRouting, err)
	}

	txHash, err := r.transmitter.SendTokenWithMemo(ctx, sendToken, registry.OrderBookAddress, sendAmount, memoRaw)
	if err != nil {
		// surface the failure; the ledger stays untouched so the two
		// backends cannot diverge for one intent
		return nil, entity.Tag(entity.ErrRouting, err)
	}

	r.logger.Info("limit order dispatched",
		zap.String("side", intent.Side.String()),
		zap.String("symbol", intent.Symbol),
		zap.String("request", memo.Request),
		zap.String("offer", memo.Offer),
		zap.Int("expiry_days", memo.ExpiryDays),
		zap.String("tx", txHash))

	return &entity.OrderResult{
		ID:     uuid.NewString(),
		Mode:   entity.ModeOnChain,
		TxHash: txHash,
	}, nil
}
