package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/asaskevich/govalidator"
	"github.com/pandodao/zilt-wallet/core"
)

const propertyIdentity = "wallet_identity"

func New(
	properties core.PropertyStore,
	transactions core.TransactionStore,
	cache core.WalletCache,
	logger *slog.Logger,
) *Session {
	return &Session{
		properties:   properties,
		transactions: transactions,
		cache:        cache,
		logger:       logger.With("service", "identity"),
	}
}

// Session resolves the single active wallet identity from local storage.
type Session struct {
	properties   core.PropertyStore
	transactions core.TransactionStore
	cache        core.WalletCache
	logger       *slog.Logger

	mux     sync.Mutex
	current *core.WalletIdentity
}

func (s *Session) Current(ctx context.Context) (*core.WalletIdentity, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	return s.load(ctx)
}

func (s *Session) load(ctx context.Context) (*core.WalletIdentity, error) {
	if s.current != nil {
		id := *s.current
		return &id, nil
	}

	var id core.WalletIdentity
	if err := s.properties.Get(ctx, propertyIdentity, &id); err != nil {
		s.logger.Error("properties.Get", "err", err)
		return nil, core.ErrNotAuthenticated.With("", err)
	}

	if id.AccountRef == "" || id.SigningKeyRef == "" {
		return nil, core.ErrNotAuthenticated
	}

	s.current = &id
	out := id
	return &out, nil
}

// Bind makes id the active identity, replacing any previous one. The cache
// is reset when the account changes.
func (s *Session) Bind(ctx context.Context, id *core.WalletIdentity) error {
	if _, err := govalidator.ValidateStruct(id); err != nil {
		return core.ErrValidation.With("invalid identity", err)
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	if err := s.properties.Set(ctx, propertyIdentity, id); err != nil {
		s.logger.Error("properties.Set", "err", err)
		return fmt.Errorf("save identity: %w", err)
	}

	if s.current == nil || s.current.AccountRef != id.AccountRef {
		s.cache.Reset()
	}

	v := *id
	s.current = &v
	s.logger.Info("identity bound", "account", id.AccountRef)
	return nil
}

// Logout destroys the persisted identity together with the mirrored history
// and balance snapshot of its account, then clears the cache.
func (s *Session) Logout(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	id, err := s.load(ctx)
	if err != nil && !errors.Is(err, core.ErrNotAuthenticated) {
		return err
	}

	if id != nil {
		if err := s.transactions.Delete(ctx, id.AccountRef); err != nil {
			s.logger.Error("transactions.Delete", "account", id.AccountRef, "err", err)
			return fmt.Errorf("delete history: %w", err)
		}
	}

	for _, key := range []string{core.PropertyBalanceSnapshot, core.PropertyLastSyncAt, propertyIdentity} {
		if err := s.properties.Delete(ctx, key); err != nil {
			s.logger.Error("properties.Delete", "key", key, "err", err)
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}

	s.current = nil
	s.cache.Reset()
	return nil
}
