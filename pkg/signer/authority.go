// Package signer defines the signing-authority capability: anything able
// to produce a valid signature for one address, whether a local key or a
// custodial wallet vendor. Gas sponsorship is a decorator over an
// authority, not a separate integration.
package signer

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TxRequest is an unsigned transaction handed to a signing authority.
// Fee fields are already final; authorities never re-estimate.
type TxRequest struct {
	To                   common.Address
	Data                 []byte
	Value                *big.Int
	Gas                  uint64
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// Authority signs and broadcasts transactions for exactly one address.
type Authority interface {
	// Address returns the account this authority signs for.
	Address() common.Address

	// SendTransaction signs and broadcasts the transaction, returning its
	// hash. The nonce is sourced from the chain, never tracked locally.
	SendTransaction(ctx context.Context, tx *TxRequest) (common.Hash, error)
}

// Sponsor submits a transaction through a gas-sponsorship service so the
// authority's own balance never pays for gas. Absence of a Sponsor simply
// routes all traffic to the direct path.
type Sponsor interface {
	// SendSponsored bundles the call into a sponsored smart-account
	// operation and returns the resulting transaction hash.
	SendSponsored(ctx context.Context, from common.Address, tx *TxRequest) (common.Hash, error)
}
