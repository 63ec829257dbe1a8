// Package registry holds the process-wide immutable mapping from stock
// symbol to token contract, loaded once at startup.
package registry

import (
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/svimtrade/janus/internal/entity"
)

// OrderBookAddress is the fixed order-book contract that receives
// every limit-order transfer, identical for buys and sells.
const OrderBookAddress = "0x6b57a4a9bE46bC2C67f69ba3e196A7673ba4f2bA"

// usdcArbitrum is the cash-equivalent token on Arbitrum One.
const usdcArbitrum = "0xaf88d065e77c8cC2239327C5EDb3A432268e5831"

// Registry maps symbols and contract addresses to token descriptors.
// Immutable after construction; address lookups are case-insensitive.
type Registry struct {
	bySymbol  map[string]entity.TokenDescriptor
	byAddress map[string]entity.TokenDescriptor
	cash      entity.TokenDescriptor
}

// New builds a registry from descriptors. Exactly one descriptor must
// be flagged as the cash token; symbols and addresses must be unique.
func New(tokens []entity.TokenDescriptor) (*Registry, error) {
	r := &Registry{
		bySymbol:  make(map[string]entity.TokenDescriptor, len(tokens)),
		byAddress: make(map[string]entity.TokenDescriptor, len(tokens)),
	}

	cashSeen := false
	for _, t := range tokens {
		if t.Symbol == "" {
			return nil, errors.New("token descriptor requires a symbol")
		}
		if !common.IsHexAddress(t.Address) {
			return nil, errors.Errorf("token %s has invalid contract address %q", t.Symbol, t.Address)
		}
		if t.Decimals < 0 {
			return nil, errors.Errorf("token %s has negative decimals", t.Symbol)
		}
		t.Address = entity.CanonicalAddress(t.Address)

		if _, dup := r.bySymbol[t.Symbol]; dup {
			return nil, errors.Errorf("duplicate symbol %s", t.Symbol)
		}
		if _, dup := r.byAddress[t.Address]; dup {
			return nil, errors.Errorf("duplicate contract address %s", t.Address)
		}

		if t.Cash {
			if cashSeen {
				return nil, errors.New("exactly one cash token is allowed")
			}
			cashSeen = true
			r.cash = t
		}

		r.bySymbol[t.Symbol] = t
		r.byAddress[t.Address] = t
	}

	if !cashSeen {
		return nil, errors.New("registry requires a cash token")
	}

	return r, nil
}

// BySymbol looks up a descriptor by its stock symbol.
func (r *Registry) BySymbol(symbol string) (entity.TokenDescriptor, bool) {
	t, ok := r.bySymbol[symbol]
	return t, ok
}

// ByAddress looks up a descriptor by contract address, ignoring case.
func (r *Registry) ByAddress(address string) (entity.TokenDescriptor, bool) {
	t, ok := r.byAddress[entity.CanonicalAddress(address)]
	return t, ok
}

// CashToken returns the designated cash-equivalent descriptor.
func (r *Registry) CashToken() entity.TokenDescriptor { return r.cash }

// Symbols returns every non-cash symbol, in map order.
func (r *Registry) Symbols() []string {
	out := make([]string, 0, len(r.bySymbol))
	for symbol, t := range r.bySymbol {
		if t.Cash {
			continue
		}
		out = append(out, symbol)
	}
	return out
}

// Default returns the built-in Arbitrum dShare set with USDC as cash.
func Default() *Registry {
	r, err := New([]entity.TokenDescriptor{
		{Symbol: "USDC", Address: usdcArbitrum, Decimals: 6, Cash: true},
		{Symbol: "AAPL", Address: "0x46b979440AC257151eE5a5bC9597B76386907Fa1", Decimals: 18},
		{Symbol: "TSLA", Address: "0x36d37B6cbCA364Cf1D843efF8C2f6824491bcF81", Decimals: 18},
		{Symbol: "MSFT", Address: "0x77308F8B63A99b24b262D930E0218ED2f49F8475", Decimals: 18},
		{Symbol: "NVDA", Address: "0x4DaFFfDDEa93DdF1e0e7B61E844331455053Ce5c", Decimals: 18},
		{Symbol: "AMZN", Address: "0x8240aFFe697CdE618AD05c3c8963f5Bfe152650b", Decimals: 18},
		{Symbol: "GOOGL", Address: "0x519062155B0591627C8A0C0958110A8C5639DcA6", Decimals: 18},
		{Symbol: "META", Address: "0xd8F728AdB72a46Ae2c92234AE8870D04907786C5", Decimals: 18},
		{Symbol: "COIN", Address: "0x3c9f23dB4DDC5655f7be636358D319A3De1Ff0c4", Decimals: 18},
	})
	if err != nil {
		// the built-in table is validated by tests
		panic(err)
	}
	return r
}

// LoadFile reads a YAML token list and builds a registry from it.
func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read registry file")
	}

	var tokens []entity.TokenDescriptor
	if err := yaml.Unmarshal(raw, &tokens); err != nil {
		return nil, errors.Wrap(err, "decode registry file")
	}

	r, err := New(tokens)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid registry file %s", path)
	}
	return r, nil
}
