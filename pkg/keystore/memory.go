package keystore

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// MemoryStore is the in-process Store, used for tests and single-node
// deployments.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*AuthorizationKey
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[uuid.UUID]*AuthorizationKey),
	}
}

// Save stores the key, replacing any existing key for the same wallet.
func (s *MemoryStore) Save(ctx context.Context, key *AuthorizationKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.byID {
		if existing.WalletID == key.WalletID {
			delete(s.byID, id)
		}
	}

	stored := *key
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
		key.ID = stored.ID
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.byID[stored.ID] = &stored
	return nil
}

// GetByID looks a key up by its identifier.
func (s *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*AuthorizationKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *key
	return &copied, nil
}

// GetByAddress looks a key up by its wallet address.
func (s *MemoryStore) GetByAddress(ctx context.Context, address common.Address) (*AuthorizationKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, key := range s.byID {
		if key.Address == address {
			copied := *key
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

// Delete removes a key.
func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}
