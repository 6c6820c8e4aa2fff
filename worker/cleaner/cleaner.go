package cleaner

import (
	"context"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/pandodao/zilt-wallet/core"
)

type Config struct {
	// TTL is how long an unfinished challenge is kept.
	TTL time.Duration `valid:"required"`
}

// Cleaner discards verification challenges abandoned mid deposit.
type Cleaner struct {
	challenges core.ChallengeStore
	logger     *slog.Logger
	cfg        Config
}

func New(
	challenges core.ChallengeStore,
	logger *slog.Logger,
	cfg Config,
) *Cleaner {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Cleaner{
		challenges: challenges,
		logger:     logger.With("worker", "cleaner"),
		cfg:        cfg,
	}
}

func (w *Cleaner) Run(ctx context.Context) error {
	w.logger.Info("cleaner start")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Minute):
			_ = w.run(ctx)
		}
	}
}

func (w *Cleaner) run(ctx context.Context) error {
	n, err := w.challenges.Purge(ctx, time.Now().Add(-w.cfg.TTL))
	if err != nil {
		w.logger.Error("challenges.Purge", "err", err)
		return err
	}

	if n > 0 {
		w.logger.Info("abandoned challenges purged", "count", n)
	}

	return nil
}
