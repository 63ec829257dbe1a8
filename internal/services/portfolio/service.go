// Package portfolio decides which backend is authoritative for
// position data and produces the snapshot for each call.
package portfolio

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/svimtrade/janus/internal/entity"
	"github.com/svimtrade/janus/internal/registry"
)

// BalanceProvider returns all token holdings of a wallet. Implemented
// by the Alchemy client; faked in tests.
type BalanceProvider interface {
	TokenBalances(ctx context.Context, wallet string) ([]entity.RawHolding, error)
}

// LedgerReader reads the newest record of the local position ledger.
type LedgerReader interface {
	Latest() (*entity.LedgerRecord, error)
}

// Service selects the authoritative backend per call and builds the
// snapshot. No state is shared across calls beyond the immutable
// registry and configuration captured at construction.
type Service struct {
	logger   *zap.Logger
	registry *registry.Registry
	provider BalanceProvider
	ledger   LedgerReader
	wallet   string
	onchain  bool
}

// New builds the portfolio service. onchainEnabled should already
// account for the enable flag and provider credentials; the wallet
// address is checked here as well so a missing wallet always demotes
// the service to ledger mode.
func New(logger *zap.Logger, reg *registry.Registry, provider BalanceProvider, ledger LedgerReader, wallet string, onchainEnabled bool) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger:   logger,
		registry: reg,
		provider: provider,
		ledger:   ledger,
		wallet:   wallet,
		onchain:  onchainEnabled,
	}
}

// Mode returns the preferred authoritative source. Pure decision: the
// chain is never contacted here. When the enable flag or required
// configuration is absent the answer is always ledger.
func (s *Service) Mode() entity.Mode {
	if s.onchain && s.wallet != "" && s.provider != nil {
		return entity.ModeOnChain
	}
	return entity.ModeLedger
}

// LatestSnapshot produces the current portfolio view. In on-chain mode
// the balance provider is queried exactly once; any failure is logged
// and the call falls back to the ledger. Provider errors never escape
// the read path.
func (s *Service) LatestSnapshot(ctx context.Context) (*entity.Snapshot, error) {
	if s.Mode() == entity.ModeOnChain {
		holdings, err := s.provider.TokenBalances(ctx, s.wallet)
		if err == nil {
			return BuildSnapshot(holdings, s.registry), nil
		}
		s.logger.Warn("on-chain balance fetch failed, falling back to ledger", zap.Error(err))
	}

	return s.ledgerSnapshot()
}

func (s *Service) ledgerSnapshot() (*entity.Snapshot, error) {
	rec, err := s.ledger.Latest()
	if err != nil {
		return nil, errors.Wrap(err, "read position ledger")
	}
	if rec == nil {
		return nil, errors.New("position ledger is empty")
	}
	return rec.ToSnapshot(), nil
}
