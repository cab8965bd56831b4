package keystore

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// PostgresStore persists authorization keys in Postgres. The one-key-per-
// wallet invariant is enforced by a unique constraint on wallet_id plus
// upsert semantics on Save.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Schema is the table this store expects.
const Schema = `
CREATE TABLE IF NOT EXISTS authorization_keys (
    id          UUID PRIMARY KEY,
    wallet_id   TEXT NOT NULL UNIQUE,
    address     TEXT NOT NULL,
    app_id      TEXT NOT NULL,
    public_key  TEXT NOT NULL,
    private_key TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS authorization_keys_address_idx ON authorization_keys (address);
`

// NewPostgresStore creates a store over an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the backing table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return errors.Wrap(err, "failed to migrate authorization_keys")
}

// Save stores the key, replacing any existing key for the same wallet.
func (s *PostgresStore) Save(ctx context.Context, key *AuthorizationKey) error {
	if key.ID == uuid.Nil {
		key.ID = uuid.New()
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO authorization_keys (id, wallet_id, address, app_id, public_key, private_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (wallet_id) DO UPDATE SET
			id = EXCLUDED.id,
			address = EXCLUDED.address,
			app_id = EXCLUDED.app_id,
			public_key = EXCLUDED.public_key,
			private_key = EXCLUDED.private_key,
			created_at = EXCLUDED.created_at`,
		key.ID, key.WalletID, key.Address.Hex(), key.AppID, key.PublicKey, key.PrivateKey, key.CreatedAt)
	return errors.Wrap(err, "failed to save authorization key")
}

// GetByID looks a key up by its identifier.
func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*AuthorizationKey, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, wallet_id, address, app_id, public_key, private_key, created_at
		FROM authorization_keys WHERE id = $1`, id)
	return scanKey(row)
}

// GetByAddress looks a key up by its wallet address.
func (s *PostgresStore) GetByAddress(ctx context.Context, address common.Address) (*AuthorizationKey, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, wallet_id, address, app_id, public_key, private_key, created_at
		FROM authorization_keys WHERE address = $1`, address.Hex())
	return scanKey(row)
}

// Delete removes a key.
func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM authorization_keys WHERE id = $1`, id)
	return errors.Wrap(err, "failed to delete authorization key")
}

func scanKey(row pgx.Row) (*AuthorizationKey, error) {
	var key AuthorizationKey
	var address string
	err := row.Scan(&key.ID, &key.WalletID, &address, &key.AppID, &key.PublicKey, &key.PrivateKey, &key.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to scan authorization key")
	}
	key.Address = common.HexToAddress(address)
	return &key, nil
}
