package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/cyphera/jobdispatch/internal/logger"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// EthProvider adapts an ethclient.Client to the Provider interface.
type EthProvider struct {
	client       *ethclient.Client
	logger       *zap.Logger
	pollInterval time.Duration
}

// NewEthProvider dials the given RPC endpoint.
func NewEthProvider(rpcURL string) (*EthProvider, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}
	return WrapClient(client), nil
}

// WrapClient wraps an already-connected ethclient.
func WrapClient(client *ethclient.Client) *EthProvider {
	return &EthProvider{
		client:       client,
		logger:       logger.Log,
		pollInterval: time.Second,
	}
}

// EstimateFeesPerGas reads the head block base fee and the suggested tip.
func (p *EthProvider) EstimateFeesPerGas(ctx context.Context) (*FeesPerGas, error) {
	header, err := p.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch head header: %w", err)
	}

	baseFee := header.BaseFee
	if baseFee == nil {
		// Pre-London network: fall back to the legacy gas price.
		baseFee, err = p.client.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch gas price: %w", err)
		}
	}

	tip, err := p.client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch priority fee: %w", err)
	}

	return &FeesPerGas{
		BaseFee:     new(big.Int).Set(baseFee),
		PriorityFee: tip,
	}, nil
}

// EstimateGas estimates gas units for the given call.
func (p *EthProvider) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return p.client.EstimateGas(ctx, msg)
}

// PendingNonceAt returns the pending nonce for an account.
func (p *EthProvider) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return p.client.PendingNonceAt(ctx, account)
}

// SendTransaction broadcasts a signed transaction.
func (p *EthProvider) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return p.client.SendTransaction(ctx, tx)
}

// TransactionReceipt returns the receipt for a mined transaction.
func (p *EthProvider) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return p.client.TransactionReceipt(ctx, txHash)
}

// WaitForReceipt polls until the transaction is mined. The context carries
// the provider-level timeout; when it expires the error is ErrReceiptTimeout
// so callers can distinguish a slow chain from a broken one.
func (p *EthProvider) WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := p.client.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: waiting for %s: %v", ErrReceiptTimeout, txHash.Hex(), ctx.Err())
			}
			return nil, fmt.Errorf("failed to fetch receipt for %s: %w", txHash.Hex(), err)
		}

		p.logger.Debug("transaction not yet mined",
			zap.String("tx_hash", txHash.Hex()))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: waiting for %s: %v", ErrReceiptTimeout, txHash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// ChainID returns the chain identifier of the connected network.
func (p *EthProvider) ChainID(ctx context.Context) (*big.Int, error) {
	return p.client.ChainID(ctx)
}

// Close releases the underlying RPC connection.
func (p *EthProvider) Close() {
	p.client.Close()
}
