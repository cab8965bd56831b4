// Package keystore persists per-wallet authorization key pairs. Exactly
// one key pair exists per wallet at any time; saving a key for a wallet
// replaces the previous one.
package keystore

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// ErrNotFound reports that no key matches the lookup.
var ErrNotFound = errors.New("authorization key not found")

// AuthorizationKey is an asymmetric key pair bound to exactly one wallet.
// PrivateKey holds the key material in one of the accepted wire forms
// (tagged base64 DER or PEM); it never leaves the process that signs
// with it.
type AuthorizationKey struct {
	ID         uuid.UUID
	WalletID   string
	Address    common.Address
	AppID      string
	PublicKey  string // PEM, as registered with the custodial service
	PrivateKey string
	CreatedAt  time.Time
}

// Store is the persistence capability for authorization keys.
type Store interface {
	// Save stores the key, replacing any existing key for the same wallet.
	Save(ctx context.Context, key *AuthorizationKey) error

	// GetByID looks a key up by its identifier.
	GetByID(ctx context.Context, id uuid.UUID) (*AuthorizationKey, error)

	// GetByAddress looks a key up by its wallet address.
	GetByAddress(ctx context.Context, address common.Address) (*AuthorizationKey, error)

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}
