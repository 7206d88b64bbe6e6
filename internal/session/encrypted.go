package session

import (
	"context"
	"fmt"

	"github.com/jwalitptl/liver-report/pkg/security"
)

// EncryptedStore seals values before handing them to the wrapped store.
// Each value is bound to its key, so a ciphertext copied to another
// session does not open.
type EncryptedStore struct {
	Store
	sealer *security.Sealer
}

func NewEncryptedStore(inner Store, sealer *security.Sealer) *EncryptedStore {
	return &EncryptedStore{Store: inner, sealer: sealer}
}

func (s *EncryptedStore) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.Store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	plain, err := s.sealer.Open(sealed, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return plain, nil
}

func (s *EncryptedStore) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := s.sealer.Seal(value, []byte(key))
	if err != nil {
		return err
	}
	return s.Store.Set(ctx, key, sealed)
}
