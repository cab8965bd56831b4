package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// FeesPerGas holds the live EIP-1559 fee components for the next block.
type FeesPerGas struct {
	BaseFee     *big.Int
	PriorityFee *big.Int
}

// Provider is the narrow view of a chain RPC endpoint used by this module.
// *ethclient.Client satisfies the underlying calls; EthProvider adapts it.
type Provider interface {
	// EstimateFeesPerGas returns the current base fee and suggested priority fee.
	EstimateFeesPerGas(ctx context.Context) (*FeesPerGas, error)

	// EstimateGas estimates the gas units needed for the given call.
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)

	// PendingNonceAt returns the next nonce for the account, including
	// pending transactions. The chain is the only source of nonce truth.
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)

	// SendTransaction broadcasts a signed transaction.
	SendTransaction(ctx context.Context, tx *types.Transaction) error

	// TransactionReceipt returns the receipt for a mined transaction.
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)

	// WaitForReceipt blocks until the transaction is mined or the context
	// expires. Context expiry surfaces as ErrReceiptTimeout.
	WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)

	// ChainID returns the chain identifier of the connected network.
	ChainID(ctx context.Context) (*big.Int, error)
}
