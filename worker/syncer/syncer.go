package syncer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/pandodao/zilt-wallet/core"
)

type Config struct {
	Interval time.Duration `valid:"required"`
	// HydrateLimit bounds how much mirrored history is loaded at start.
	HydrateLimit int `valid:"required"`
}

type Refresher interface {
	Refresh(ctx context.Context) error
}

type balanceSnapshot struct {
	AccountRef string       `json:"account_ref"`
	Balance    core.Balance `json:"balance"`
}

func New(
	wallet Refresher,
	session core.IdentitySession,
	transactions core.TransactionStore,
	properties core.PropertyStore,
	cache core.WalletCache,
	logger *slog.Logger,
	cfg Config,
) *Syncer {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Syncer{
		wallet:       wallet,
		session:      session,
		transactions: transactions,
		properties:   properties,
		cache:        cache,
		logger:       logger.With("worker", "syncer"),
		cfg:          cfg,
	}
}

// Syncer keeps the wallet cache fresh and mirrors it into local storage, so
// the last known history is available before the ledger answers.
type Syncer struct {
	wallet       Refresher
	session      core.IdentitySession
	transactions core.TransactionStore
	properties   core.PropertyStore
	cache        core.WalletCache
	logger       *slog.Logger
	cfg          Config
}

func (w *Syncer) Run(ctx context.Context) error {
	w.logger.Info("syncer start")

	if err := w.hydrate(ctx); err != nil {
		w.logger.Error("hydrate", "err", err)
	}

	for {
		dur := w.cfg.Interval
		if w.run(ctx) != nil {
			dur = min(dur, 5*time.Second)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
		}
	}
}

func (w *Syncer) hydrate(ctx context.Context) error {
	id, err := w.session.Current(ctx)
	if errors.Is(err, core.ErrNotAuthenticated) {
		return nil
	} else if err != nil {
		return err
	}

	if len(w.cache.Transactions()) > 0 {
		return nil
	}

	transactions, err := w.transactions.List(ctx, id.AccountRef, w.cfg.HydrateLimit)
	if err != nil {
		w.logger.Error("transactions.List", "err", err)
		return err
	}

	var snapshot balanceSnapshot
	if err := w.properties.Get(ctx, core.PropertyBalanceSnapshot, &snapshot); err != nil {
		w.logger.Error("properties.Get", "err", err)
		return err
	}

	w.cache.ReplaceTransactions(transactions)
	if snapshot.AccountRef == id.AccountRef {
		w.cache.SetBalance(snapshot.Balance)
	}

	w.logger.Info("cache hydrated", "account", id.AccountRef, "count", len(transactions))
	return nil
}

func (w *Syncer) run(ctx context.Context) error {
	id, err := w.session.Current(ctx)
	if errors.Is(err, core.ErrNotAuthenticated) {
		w.logger.Debug("no active identity, skip")
		return nil
	} else if err != nil {
		return err
	}

	if err := w.wallet.Refresh(ctx); err != nil {
		w.logger.Error("wallet.Refresh", "err", err)
		return err
	}

	transactions := w.cache.Transactions()
	if err := w.transactions.Save(ctx, id.AccountRef, transactions); err != nil {
		w.logger.Error("transactions.Save", "err", err)
		return err
	}

	if err := w.properties.Set(ctx, core.PropertyBalanceSnapshot, balanceSnapshot{
		AccountRef: id.AccountRef,
		Balance:    w.cache.Balance(),
	}); err != nil {
		w.logger.Error("properties.Set", "key", core.PropertyBalanceSnapshot, "err", err)
		return err
	}

	if err := w.properties.Set(ctx, core.PropertyLastSyncAt, time.Now().UTC()); err != nil {
		w.logger.Error("properties.Set", "key", core.PropertyLastSyncAt, "err", err)
		return err
	}

	w.logger.Debug("synced", "account", id.AccountRef, "count", len(transactions))
	return nil
}
