package signer

import (
	"context"
	"fmt"
	"math/big"
	"net/http"

	"github.com/cyphera/jobdispatch/internal/client/custodial"
	"github.com/cyphera/jobdispatch/internal/logger"
	"github.com/cyphera/jobdispatch/pkg/authsig"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustodialAuthority signs through the custodial wallet vendor. The raw
// key never exists here; each submission carries an authorization
// signature (P-256 over the canonical request payload) proving backend
// control of the wallet.
type CustodialAuthority struct {
	client      *custodial.Client
	walletID    string
	address     common.Address
	keyMaterial string
	logger      *zap.Logger
}

// NewCustodialAuthority binds a custodial wallet to its authorization key
// material (either wire form accepted by authsig.ParsePrivateKey). The
// key is validated up front so broken material fails before any
// submission is attempted.
func NewCustodialAuthority(ctx context.Context, client *custodial.Client, walletID, keyMaterial string) (*CustodialAuthority, error) {
	if _, err := authsig.ParsePrivateKey(keyMaterial); err != nil {
		return nil, err
	}

	wallet, err := client.GetWallet(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve custodial wallet %s: %w", walletID, err)
	}

	return &CustodialAuthority{
		client:      client,
		walletID:    walletID,
		address:     common.HexToAddress(wallet.Address),
		keyMaterial: keyMaterial,
		logger:      logger.Log,
	}, nil
}

// Address returns the custodial wallet's account address.
func (a *CustodialAuthority) Address() common.Address {
	return a.address
}

// SendTransaction submits the contract call through the custodial API and
// waits for the vendor to report the on-chain hash.
func (a *CustodialAuthority) SendTransaction(ctx context.Context, tx *TxRequest) (common.Hash, error) {
	request := custodial.ContractCallRequest{
		IdempotencyKey:  uuid.New().String(),
		WalletID:        a.walletID,
		ContractAddress: tx.To.Hex(),
		CallData:        hexutil.Encode(tx.Data),
	}
	if tx.Value != nil && tx.Value.Sign() > 0 {
		request.Value = tx.Value.String()
	}
	if tx.Gas > 0 {
		request.GasLimit = new(big.Int).SetUint64(tx.Gas).String()
	}
	if tx.MaxFeePerGas != nil {
		request.MaxFee = tx.MaxFeePerGas.String()
	}
	if tx.MaxPriorityFeePerGas != nil {
		request.PriorityFee = tx.MaxPriorityFeePerGas.String()
	}

	url := a.client.ResolveURL("transactions/contract-call")
	signature, err := authsig.Sign(http.MethodPost, url, request, a.client.AppID(), a.keyMaterial)
	if err != nil {
		return common.Hash{}, err
	}

	submitted, err := a.client.SubmitContractCall(ctx, request, signature)
	if err != nil {
		return common.Hash{}, err
	}

	hash := submitted.TxHash
	if hash == "" {
		hash, err = a.client.WaitForHash(ctx, submitted.ID)
		if err != nil {
			return common.Hash{}, err
		}
	}

	a.logger.Debug("custodial transaction submitted",
		zap.String("wallet_id", a.walletID),
		zap.String("tx_hash", hash))

	return common.HexToHash(hash), nil
}
