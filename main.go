package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/svimtrade/janus/config"
	"github.com/svimtrade/janus/internal/clients"
	"github.com/svimtrade/janus/internal/entity"
	"github.com/svimtrade/janus/internal/registry"
	"github.com/svimtrade/janus/internal/services/order"
	"github.com/svimtrade/janus/internal/services/portfolio"
	"github.com/svimtrade/janus/internal/services/promptbuilder"
	"github.com/svimtrade/janus/internal/storage/ledger"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("janus failed", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	reg := registry.Default()
	if cfg.RegistryPath != "" {
		reg, err = registry.LoadFile(cfg.RegistryPath)
		if err != nil {
			return err
		}
	}

	store, err := ledger.New(cfg.LedgerDir)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitIfEmpty(cfg.StartingCash); err != nil {
		return err
	}

	var provider portfolio.BalanceProvider
	if cfg.BalanceProviderAPIKey != "" {
		provider = clients.NewAlchemyClient(cfg.BalanceProviderURL, cfg.BalanceProviderAPIKey, cfg.Network, logger)
	}

	selector := portfolio.New(logger, reg, provider, store, cfg.WalletAddress, cfg.OnchainReadReady())

	command := "position"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	ctx := context.Background()

	switch command {
	case "position":
		snapshot, err := selector.LatestSnapshot(ctx)
		if err != nil {
			return err
		}
		fmt.Print(promptbuilder.PortfolioSection(snapshot))
		return nil
	case "buy", "sell":
		return runTrade(ctx, logger, cfg, reg, store, selector, command)
	default:
		return fmt.Errorf("unknown command %q (expected position, buy or sell)", command)
	}
}

func runTrade(ctx context.Context, logger *zap.Logger, cfg config.Config, reg *registry.Registry, store *ledger.Store, selector *portfolio.Service, command string) error {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	symbol := fs.String("symbol", "", "stock symbol, example: AAPL")
	qty := fs.String("qty", "", "quantity of shares")
	price := fs.String("price", "", "limit price per share")
	expiry := fs.Int("expiry", 0, "limit order expiry in days (default 2)")
	if err := fs.Parse(os.Args[2:]); err != nil {
		return err
	}

	quantity, err := decimal.NewFromString(*qty)
	if err != nil {
		return entity.Tagf(entity.ErrValidation, "invalid -qty %q", *qty)
	}
	limitPrice, err := decimal.NewFromString(*price)
	if err != nil {
		return entity.Tagf(entity.ErrValidation, "invalid -price %q", *price)
	}

	var transmitter order.TokenTransmitter
	if selector.Mode() == entity.ModeOnChain {
		if err := cfg.OnchainTradeReady(); err != nil {
			return err
		}
		evm, err := clients.NewEVMClient(ctx, cfg.ChainRPCURL, cfg.WalletPrivateKey, cfg.ChainID, logger)
		if err != nil {
			return err
		}
		defer evm.Close()
		transmitter = evm
	}

	router := order.NewRouter(logger, reg, store, transmitter, selector, cfg.WalletAddress)

	var result *entity.OrderResult
	switch command {
	case "buy":
		result, err = router.Buy(ctx, *symbol, quantity, limitPrice, *expiry)
	case "sell":
		result, err = router.Sell(ctx, *symbol, quantity, limitPrice, *expiry)
	}
	if err != nil {
		return err
	}

	if result.Mode == entity.ModeOnChain {
		fmt.Printf("order %s dispatched on-chain: tx %s\n", result.ID, result.TxHash)
		return nil
	}
	fmt.Printf("order %s applied to ledger: record %d\n", result.ID, result.LedgerID)
	fmt.Print(promptbuilder.PortfolioSection(result.Snapshot))
	return nil
}
