package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/svimtrade/janus/internal/entity"
)

const providerTimeout = 30 * time.Second

// AlchemyClient queries the Alchemy portfolio API for all ERC-20
// holdings of a wallet. One upstream request per call, no retries;
// retry policy belongs to the caller's fallback contract.
type AlchemyClient struct {
	baseURL string
	apiKey  string
	network string
	httpc   *http.Client
	logger  *zap.Logger
}

// NewAlchemyClient builds a balance-provider client for one network.
func NewAlchemyClient(baseURL, apiKey, network string, logger *zap.Logger) *AlchemyClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlchemyClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		network: network,
		httpc:   &http.Client{Timeout: providerTimeout},
		logger:  logger,
	}
}

type tokensRequest struct {
	Addresses []struct {
		Address  string   `json:"address"`
		Networks []string `json:"networks"`
	} `json:"addresses"`
	WithMetadata       bool `json:"withMetadata"`
	IncludeErc20Tokens bool `json:"includeErc20Tokens"`
}

type tokensResponse struct {
	Data struct {
		Tokens []struct {
			TokenAddress string `json:"tokenAddress"`
			TokenBalance string `json:"tokenBalance"`
		} `json:"tokens"`
	} `json:"data"`
}

// TokenBalances fetches every token holding of the wallet. Failures of
// any kind (transport, auth, malformed payload) are tagged as
// provider errors so the snapshot path can fall back to the ledger.
func (c *AlchemyClient) TokenBalances(ctx context.Context, wallet string) ([]entity.RawHolding, error) {
	if c.apiKey == "" {
		return nil, entity.Tagf(entity.ErrProvider, "balance provider api key is not set")
	}
	if wallet == "" {
		return nil, entity.Tagf(entity.ErrProvider, "wallet address is empty")
	}

	reqBody := tokensRequest{
		WithMetadata:       false,
		IncludeErc20Tokens: true,
	}
	reqBody.Addresses = append(reqBody.Addresses, struct {
		Address  string   `json:"address"`
		Networks []string `json:"networks"`
	}{Address: wallet, Networks: []string{c.network}})

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, entity.Tag(entity.ErrProvider, errors.Wrap(err, "encode balance request"))
	}

	url := fmt.Sprintf("%s/%s/assets/tokens/by-address", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, entity.Tag(entity.ErrProvider, errors.Wrap(err, "build balance request"))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, entity.Tag(entity.ErrProvider, errors.Wrap(err, "query balance provider"))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, entity.Tagf(entity.ErrProvider, "balance provider returned status %d", resp.StatusCode)
	}

	var decoded tokensResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, entity.Tag(entity.ErrProvider, errors.Wrap(err, "decode balance response"))
	}

	holdings := make([]entity.RawHolding, 0, len(decoded.Data.Tokens))
	for _, t := range decoded.Data.Tokens {
		if t.TokenAddress == "" {
			// native gas token, not an ERC-20 holding
			continue
		}
		raw, err := parseBigInt(t.TokenBalance)
		if err != nil {
			return nil, entity.Tag(entity.ErrProvider,
				errors.Wrapf(err, "malformed balance for token %s", t.TokenAddress))
		}
		holdings = append(holdings, entity.RawHolding{
			Address: t.TokenAddress,
			Raw:     raw,
		})
	}

	c.logger.Debug("fetched wallet holdings",
		zap.String("network", c.network),
		zap.Int("tokens", len(holdings)))

	return holdings, nil
}

// parseBigInt accepts the provider's two balance encodings: 0x-prefixed
// hex and plain decimal strings.
func parseBigInt(raw string) (*big.Int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, errors.New("empty balance")
	}

	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}

	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, errors.Errorf("unparseable balance %q", raw)
	}
	if v.Sign() < 0 {
		return nil, errors.Errorf("negative balance %q", raw)
	}
	return v, nil
}
