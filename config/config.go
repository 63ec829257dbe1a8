// Package config loads the adapter's process configuration from the
// environment. Services receive the resulting struct explicitly; no
// ambient os.Getenv lookups live in call sites.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/svimtrade/janus/internal/entity"
)

const (
	defaultProviderURL  = "https://api.g.alchemy.com/data/v1"
	defaultNetwork      = "arb-mainnet"
	defaultChainRPCURL  = "https://arb1.arbitrum.io/rpc"
	defaultChainID      = 42161
	defaultLedgerDir    = "./wal/ledger"
	defaultStartingCash = "10000"
)

// Config carries every setting the adapter needs. WalletPrivateKey is
// required only for the on-chain trade path and must never be logged.
type Config struct {
	EnableOnchain         bool
	WalletAddress         string
	WalletPrivateKey      string
	BalanceProviderAPIKey string
	BalanceProviderURL    string
	Network               string
	ChainRPCURL           string
	ChainID               int64
	LedgerDir             string
	RegistryPath          string
	StartingCash          decimal.Decimal
}

// FromEnv reads configuration from the environment and validates it.
func FromEnv() (Config, error) {
	cfg := Config{
		EnableOnchain:         parseBool(os.Getenv("ENABLE_ONCHAIN_MODE")),
		WalletAddress:         strings.TrimSpace(os.Getenv("WALLET_ADDRESS")),
		WalletPrivateKey:      strings.TrimSpace(os.Getenv("WALLET_PRIVATE_KEY")),
		BalanceProviderAPIKey: strings.TrimSpace(os.Getenv("BALANCE_PROVIDER_API_KEY")),
		BalanceProviderURL:    envOrDefault("BALANCE_PROVIDER_URL", defaultProviderURL),
		Network:               envOrDefault("BALANCE_PROVIDER_NETWORK", defaultNetwork),
		ChainRPCURL:           envOrDefault("CHAIN_RPC_URL", defaultChainRPCURL),
		ChainID:               defaultChainID,
		LedgerDir:             envOrDefault("LEDGER_DIR", defaultLedgerDir),
		RegistryPath:          strings.TrimSpace(os.Getenv("REGISTRY_PATH")),
	}

	if raw := os.Getenv("CHAIN_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, entity.Tag(entity.ErrConfiguration, errors.Wrap(err, "parse CHAIN_ID"))
		}
		cfg.ChainID = id
	}

	cash, err := decimal.NewFromString(envOrDefault("LEDGER_STARTING_CASH", defaultStartingCash))
	if err != nil {
		return Config{}, entity.Tag(entity.ErrConfiguration, errors.Wrap(err, "parse LEDGER_STARTING_CASH"))
	}
	cfg.StartingCash = cash

	if cfg.WalletAddress != "" && !common.IsHexAddress(cfg.WalletAddress) {
		return Config{}, entity.Tagf(entity.ErrConfiguration,
			"WALLET_ADDRESS must be a 0x-prefixed 40-char hex string")
	}

	return cfg, nil
}

// OnchainReadReady reports whether the on-chain snapshot path can be
// attempted: explicit enable flag plus wallet and provider credentials.
func (c Config) OnchainReadReady() bool {
	return c.EnableOnchain && c.WalletAddress != "" && c.BalanceProviderAPIKey != ""
}

// OnchainTradeReady validates the transfer path requirements. Unlike
// snapshot reads, a trade has no fallback, so a broken configuration
// is a hard error.
func (c Config) OnchainTradeReady() error {
	if !c.OnchainReadReady() {
		return entity.Tagf(entity.ErrConfiguration,
			"on-chain trading requires ENABLE_ONCHAIN_MODE, WALLET_ADDRESS and BALANCE_PROVIDER_API_KEY")
	}
	if c.WalletPrivateKey == "" {
		return entity.Tagf(entity.ErrConfiguration, "WALLET_PRIVATE_KEY is not set")
	}
	if _, err := crypto.HexToECDSA(strings.TrimPrefix(c.WalletPrivateKey, "0x")); err != nil {
		return entity.Tag(entity.ErrConfiguration, errors.Wrap(err, "parse WALLET_PRIVATE_KEY"))
	}
	return nil
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
