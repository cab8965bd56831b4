package signer

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/cyphera/jobdispatch/internal/logger"
	"github.com/cyphera/jobdispatch/pkg/chain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// LocalAuthority signs with an in-process secp256k1 key and broadcasts
// through the chain provider directly.
type LocalAuthority struct {
	key      *ecdsa.PrivateKey
	address  common.Address
	provider chain.Provider
	chainID  *big.Int
	logger   *zap.Logger
}

// NewLocalAuthority creates an authority from a hex-encoded secp256k1
// private key (with or without 0x prefix).
func NewLocalAuthority(ctx context.Context, privateKeyHex string, provider chain.Provider) (*LocalAuthority, error) {
	if len(privateKeyHex) >= 2 && privateKeyHex[:2] == "0x" {
		privateKeyHex = privateKeyHex[2:]
	}
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid signing key: %w", err)
	}

	chainID, err := provider.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain ID: %w", err)
	}

	return &LocalAuthority{
		key:      key,
		address:  crypto.PubkeyToAddress(key.PublicKey),
		provider: provider,
		chainID:  chainID,
		logger:   logger.Log,
	}, nil
}

// Address returns the account this authority signs for.
func (a *LocalAuthority) Address() common.Address {
	return a.address
}

// SendTransaction signs an EIP-1559 transaction with the chain-sourced
// pending nonce and broadcasts it.
func (a *LocalAuthority) SendTransaction(ctx context.Context, tx *TxRequest) (common.Hash, error) {
	nonce, err := a.provider.PendingNonceAt(ctx, a.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to fetch pending nonce: %w", err)
	}

	value := tx.Value
	if value == nil {
		value = big.NewInt(0)
	}

	to := tx.To
	unsigned := types.NewTx(&types.DynamicFeeTx{
		ChainID:   a.chainID,
		Nonce:     nonce,
		GasTipCap: tx.MaxPriorityFeePerGas,
		GasFeeCap: tx.MaxFeePerGas,
		Gas:       tx.Gas,
		To:        &to,
		Value:     value,
		Data:      tx.Data,
	})

	signed, err := types.SignTx(unsigned, types.LatestSignerForChainID(a.chainID), a.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := a.provider.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, err
	}

	a.logger.Debug("transaction broadcast",
		zap.String("from", a.address.Hex()),
		zap.String("to", tx.To.Hex()),
		zap.Uint64("nonce", nonce),
		zap.String("tx_hash", signed.Hash().Hex()))

	return signed.Hash(), nil
}
