package payment

import (
	"context"
	"sort"
	"time"

	"github.com/pandodao/zilt-wallet/core"
	"golang.org/x/sync/errgroup"
)

// FetchBalance replaces the cached balance with the ledger's. The read and
// the cache write hold the account lock, so a result never straddles a
// deposit or debit.
func (s *Service) FetchBalance(ctx context.Context) (balance *core.Balance, err error) {
	defer func(start time.Time) { s.metrics.observe("fetch_balance", start, err) }(time.Now())

	id, err := s.session.Current(ctx)
	if err != nil {
		return nil, err
	}

	v, err, _ := s.sf.Do("balance:"+id.AccountRef, func() (interface{}, error) {
		unlock := s.lockAccount(id.AccountRef)
		defer unlock()

		b, err := s.ledger.GetBalance(ctx, id.AccountRef)
		if err != nil {
			s.logger.Error("ledger.GetBalance", "account", id.AccountRef, "err", err)
			return nil, core.ErrLedgerUnavailable.With("", err)
		}

		if b.Currency == "" {
			b.Currency = s.cfg.Currency
		}

		s.cache.SetBalance(*b)
		return b, nil
	})
	if err != nil {
		return nil, err
	}

	b := *v.(*core.Balance)
	return &b, nil
}

// FetchTransactions replaces the cached history with the ledger's, newest
// first.
func (s *Service) FetchTransactions(ctx context.Context) (transactions []*core.Transaction, err error) {
	defer func(start time.Time) { s.metrics.observe("fetch_transactions", start, err) }(time.Now())

	id, err := s.session.Current(ctx)
	if err != nil {
		return nil, err
	}

	_, err, _ = s.sf.Do("transactions:"+id.AccountRef, func() (interface{}, error) {
		unlock := s.lockAccount(id.AccountRef)
		defer unlock()

		list, err := s.ledger.ListTransactions(ctx, id.AccountRef)
		if err != nil {
			s.logger.Error("ledger.ListTransactions", "account", id.AccountRef, "err", err)
			return nil, core.ErrLedgerUnavailable.With("", err)
		}

		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		})

		s.cache.ReplaceTransactions(list)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	return s.cache.Transactions(), nil
}

// Refresh fetches balance and history concurrently.
func (s *Service) Refresh(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, err := s.FetchBalance(ctx)
		return err
	})

	g.Go(func() error {
		_, err := s.FetchTransactions(ctx)
		return err
	})

	return g.Wait()
}

// Transactions returns the cached history without touching the ledger.
func (s *Service) Transactions() []*core.Transaction {
	return s.cache.Transactions()
}
