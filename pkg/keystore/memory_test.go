package keystore_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/jobdispatch/pkg/authsig"
	"github.com/cyphera/jobdispatch/pkg/keystore"
)

var walletAddr = common.HexToAddress("0x5555555555555555555555555555555555555555")

func TestGenerateKey(t *testing.T) {
	key, err := keystore.GenerateKey("wallet-1", walletAddr, "app-1")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, key.ID)
	assert.Equal(t, "wallet-1", key.WalletID)
	assert.Equal(t, walletAddr, key.Address)
	assert.False(t, key.CreatedAt.IsZero())

	// The stored private material must parse back through the accepted
	// wire forms.
	parsed, err := authsig.ParsePrivateKey(key.PrivateKey)
	require.NoError(t, err)
	assert.NotNil(t, parsed)

	assert.Contains(t, key.PublicKey, "BEGIN PUBLIC KEY")
}

func TestMemoryStore_SaveAndLookup(t *testing.T) {
	store := keystore.NewMemoryStore()
	ctx := context.Background()

	key, err := keystore.GenerateKey("wallet-1", walletAddr, "app-1")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, key))

	byID, err := store.GetByID(ctx, key.ID)
	require.NoError(t, err)
	assert.Equal(t, key.PrivateKey, byID.PrivateKey)

	byAddr, err := store.GetByAddress(ctx, walletAddr)
	require.NoError(t, err)
	assert.Equal(t, key.ID, byAddr.ID)
}

func TestMemoryStore_OneKeyPerWallet(t *testing.T) {
	store := keystore.NewMemoryStore()
	ctx := context.Background()

	first, err := keystore.GenerateKey("wallet-1", walletAddr, "app-1")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, first))

	second, err := keystore.GenerateKey("wallet-1", walletAddr, "app-1")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, second))

	// Rotating replaces the previous key.
	_, err = store.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, keystore.ErrNotFound)

	current, err := store.GetByAddress(ctx, walletAddr)
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)
}

func TestMemoryStore_NotFound(t *testing.T) {
	store := keystore.NewMemoryStore()
	ctx := context.Background()

	_, err := store.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, keystore.ErrNotFound)

	_, err = store.GetByAddress(ctx, walletAddr)
	assert.ErrorIs(t, err, keystore.ErrNotFound)
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	store := keystore.NewMemoryStore()
	ctx := context.Background()

	key, err := keystore.GenerateKey("wallet-1", walletAddr, "app-1")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, key))

	require.NoError(t, store.Delete(ctx, key.ID))
	require.NoError(t, store.Delete(ctx, key.ID))

	_, err = store.GetByID(ctx, key.ID)
	assert.ErrorIs(t, err, keystore.ErrNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := keystore.NewMemoryStore()
	ctx := context.Background()

	key, err := keystore.GenerateKey("wallet-1", walletAddr, "app-1")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, key))

	loaded, err := store.GetByID(ctx, key.ID)
	require.NoError(t, err)
	loaded.PrivateKey = "tampered"

	again, err := store.GetByID(ctx, key.ID)
	require.NoError(t, err)
	assert.Equal(t, key.PrivateKey, again.PrivateKey)
}
