package clients

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/svimtrade/janus/internal/entity"
)

const (
	// gas headroom over the node's estimate; Arbitrum estimates run low
	// for calldata-heavy transfers
	gasBufferNum   = 14
	gasBufferDen   = 10
	fallbackGasCap = 150000
)

// erc20TransferSelector is the 4-byte id of transfer(address,uint256).
var erc20TransferSelector = []byte{0xa9, 0x05, 0x9c, 0xbb}

// EVMClient dispatches ERC-20 transfers carrying an opaque memo in the
// transaction calldata. It signs locally with the wallet key.
type EVMClient struct {
	eth     *ethclient.Client
	chainID *big.Int
	key     *ecdsa.PrivateKey
	from    common.Address
	logger  *zap.Logger
}

// NewEVMClient dials the RPC endpoint and derives the sender address
// from the private key.
func NewEVMClient(ctx context.Context, rpcURL, privateKeyHex string, chainID int64, logger *zap.Logger) (*EVMClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimPrefix(privateKeyHex, "0x"), "0X"))
	if err != nil {
		return nil, entity.Tag(entity.ErrConfiguration, errors.Wrap(err, "parse wallet private key"))
	}

	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, entity.Tag(entity.ErrTransfer, errors.Wrap(err, "dial chain rpc"))
	}

	return &EVMClient{
		eth:     eth,
		chainID: big.NewInt(chainID),
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		logger:  logger,
	}, nil
}

// From returns the sender address derived from the wallet key.
func (c *EVMClient) From() string { return c.from.Hex() }

// Close releases the underlying RPC connection.
func (c *EVMClient) Close() {
	if c.eth != nil {
		c.eth.Close()
	}
}

// SendTokenWithMemo transfers amount base units of the token to the
// recipient, appending memo bytes after the standard transfer calldata.
// Returns the transaction hash. Every failure is a transfer error.
func (c *EVMClient) SendTokenWithMemo(ctx context.Context, tokenAddress, recipient string, amount *big.Int, memo []byte) (string, error) {
	if !common.IsHexAddress(tokenAddress) {
		return "", entity.Tagf(entity.ErrTransfer, "invalid token address %q", tokenAddress)
	}
	if !common.IsHexAddress(recipient) {
		return "", entity.Tagf(entity.ErrTransfer, "invalid recipient address %q", recipient)
	}
	if amount == nil || amount.Sign() <= 0 {
		return "", entity.Tagf(entity.ErrTransfer, "transfer amount must be positive")
	}

	token := common.HexToAddress(tokenAddress)
	data := erc20TransferData(common.HexToAddress(recipient), amount, memo)

	nonce, err := c.eth.PendingNonceAt(ctx, c.from)
	if err != nil {
		return "", entity.Tag(entity.ErrTransfer, errors.Wrap(err, "fetch pending nonce"))
	}

	tip, err := c.eth.SuggestGasTipCap(ctx)
	if err != nil {
		return "", entity.Tag(entity.ErrTransfer, errors.Wrap(err, "suggest gas tip"))
	}
	head, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return "", entity.Tag(entity.ErrTransfer, errors.Wrap(err, "fetch chain head"))
	}
	if head.BaseFee == nil {
		return "", entity.Tagf(entity.ErrTransfer, "chain does not support EIP-1559 fees")
	}
	feeCap := new(big.Int).Add(new(big.Int).Mul(head.BaseFee, big.NewInt(2)), tip)

	gas, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{
		From: c.from,
		To:   &token,
		Data: data,
	})
	if err != nil {
		gas = fallbackGasCap
		c.logger.Warn("gas estimation failed, using fallback limit",
			zap.Uint64("gas", gas), zap.Error(err))
	} else {
		gas = gas * gasBufferNum / gasBufferDen
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &token,
		Value:     big.NewInt(0),
		Data:      data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return "", entity.Tag(entity.ErrTransfer, errors.Wrap(err, "sign transaction"))
	}

	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return "", entity.Tag(entity.ErrTransfer, errors.Wrap(err, "send transaction"))
	}

	hash := signed.Hash().Hex()
	c.logger.Info("token transfer dispatched",
		zap.String("token", token.Hex()),
		zap.String("tx", hash),
		zap.Uint64("gas", gas))

	return hash, nil
}

// erc20TransferData builds transfer(address,uint256) calldata with the
// memo appended verbatim after the two ABI-encoded arguments.
func erc20TransferData(to common.Address, amount *big.Int, memo []byte) []byte {
	data := make([]byte, 0, 4+32+32+len(memo))
	data = append(data, erc20TransferSelector...)
	data = append(data, common.LeftPadBytes(to.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(amount.Bytes(), 32)...)
	data = append(data, memo...)
	return data
}
