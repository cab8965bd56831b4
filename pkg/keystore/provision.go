package keystore

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cyphera/jobdispatch/internal/client/custodial"
	"github.com/cyphera/jobdispatch/internal/logger"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Provision mints a fresh authorization key for a custodial wallet,
// registers its public half with the custodial service, and persists the
// pair. Re-provisioning a wallet rotates its key: the store keeps exactly
// one pair per wallet.
func Provision(ctx context.Context, store Store, client *custodial.Client, walletID string) (*AuthorizationKey, error) {
	wallet, err := client.GetWallet(ctx, walletID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve wallet %s", walletID)
	}

	key, err := GenerateKey(walletID, common.HexToAddress(wallet.Address), client.AppID())
	if err != nil {
		return nil, err
	}

	if _, err := client.RegisterAuthorizationKey(ctx, walletID, key.PublicKey); err != nil {
		return nil, errors.Wrapf(err, "failed to register authorization key for wallet %s", walletID)
	}

	// Persist only after registration succeeds; an unregistered key in
	// the store would sign requests the service rejects.
	if err := store.Save(ctx, key); err != nil {
		return nil, errors.Wrapf(err, "failed to persist authorization key for wallet %s", walletID)
	}

	logger.Info("authorization key provisioned",
		zap.String("wallet_id", walletID),
		zap.String("key_id", key.ID.String()))

	return key, nil
}
