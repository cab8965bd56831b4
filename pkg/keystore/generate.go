package keystore

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/cyphera/jobdispatch/pkg/authsig"
)

// GenerateKey mints a fresh P-256 authorization key for a wallet. The
// private half is stored in the tagged wire form, the public half as PEM
// ready for registration with the custodial service.
func GenerateKey(walletID string, address common.Address, appID string) (*AuthorizationKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate authorization key")
	}

	tagged, err := authsig.EncodeTagged(priv)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode private key")
	}
	publicPEM, err := authsig.EncodePublicKeyPEM(&priv.PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode public key")
	}

	return &AuthorizationKey{
		ID:         uuid.New(),
		WalletID:   walletID,
		Address:    address,
		AppID:      appID,
		PublicKey:  publicPEM,
		PrivateKey: tagged,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
