package verification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/pandodao/zilt-wallet/core"
	"github.com/shopspring/decimal"
	"github.com/zyedidia/generic/cache"
	"golang.org/x/time/rate"
)

type Config struct {
	// SendInterval is the minimum gap between two codes sent to one phone.
	SendInterval time.Duration `valid:"required"`
	// MaxAttempts wrong codes move the challenge to Failed.
	MaxAttempts int `valid:"required"`
}

func New(
	verifier core.VerificationService,
	challenges core.ChallengeStore,
	logger *slog.Logger,
	cfg Config,
) *Gate {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Gate{
		verifier:   verifier,
		challenges: challenges,
		logger:     logger.With("service", "verification"),
		limiters:   cache.New[string, *rate.Limiter](1024),
		cfg:        cfg,
		now:        time.Now,
	}
}

// Gate drives the Idle -> CodeSent -> Verified | Failed challenge of a
// phone number before a fiat deposit.
type Gate struct {
	verifier   core.VerificationService
	challenges core.ChallengeStore
	logger     *slog.Logger
	cfg        Config
	now        func() time.Time

	mux      sync.Mutex
	limiters *cache.Cache[string, *rate.Limiter]
}

func (g *Gate) allow(phone string) bool {
	g.mux.Lock()
	defer g.mux.Unlock()

	l, ok := g.limiters.Get(phone)
	if !ok {
		l = rate.NewLimiter(rate.Every(g.cfg.SendInterval), 1)
		g.limiters.Put(phone, l)
	}

	return l.Allow()
}

func (g *Gate) SendCode(ctx context.Context, phone string, amount decimal.Decimal) error {
	if phone == "" {
		return core.ErrInvalidPhone
	}

	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	logger := g.logger.With("phone", phone)

	if !g.allow(phone) {
		logger.Debug("send code throttled")
		return core.ErrDeliveryFailed.With("too many verification requests, try again later", nil)
	}

	if err := g.verifier.SendCode(ctx, phone, amount.String()); err != nil {
		logger.Error("verifier.SendCode", "err", err)
		return core.ErrDeliveryFailed.With("", err)
	}

	challenge := &core.VerificationChallenge{
		PhoneNumber: phone,
		Amount:      amount,
		SentAt:      g.now(),
		State:       core.GateStateCodeSent,
	}

	if err := g.challenges.Save(ctx, challenge); err != nil {
		logger.Error("challenges.Save", "err", err)
		return core.ErrDeliveryFailed.With("", err)
	}

	return nil
}

func (g *Gate) VerifyCode(ctx context.Context, phone, code string) error {
	logger := g.logger.With("phone", phone)

	challenge, err := g.challenges.Find(ctx, phone)
	if err != nil {
		logger.Error("challenges.Find", "err", err)
		return core.ErrInvalidCode.With("", err)
	}

	if challenge == nil || challenge.State == core.GateStateIdle {
		return core.ErrInvalidCode.With("no verification code was sent to this number", nil)
	}

	switch challenge.State {
	case core.GateStateVerified:
		return nil
	case core.GateStateFailed:
		return core.ErrInvalidCode.With("too many invalid codes, request a new one", nil)
	}

	if err := g.verifier.CheckCode(ctx, phone, code); err != nil {
		logger.Debug("verifier.CheckCode", "err", err)

		challenge.Attempts++
		if challenge.Attempts >= g.cfg.MaxAttempts {
			challenge.State = core.GateStateFailed
		}

		if err := g.challenges.Save(ctx, challenge); err != nil {
			logger.Error("challenges.Save", "err", err)
		}

		return core.ErrInvalidCode.With("", err)
	}

	challenge.State = core.GateStateVerified
	if err := g.challenges.Save(ctx, challenge); err != nil {
		logger.Error("challenges.Save", "err", err)
		return core.ErrInvalidCode.With("", err)
	}

	return nil
}

func (g *Gate) State(ctx context.Context, phone string) (core.GateState, error) {
	challenge, err := g.challenges.Find(ctx, phone)
	if err != nil {
		return core.GateStateIdle, err
	}

	if challenge == nil {
		return core.GateStateIdle, nil
	}

	return challenge.State, nil
}

// Consume spends the verified challenge of phone for exactly amount. The
// challenge is removed in the same step, so one code admits one deposit.
func (g *Gate) Consume(ctx context.Context, phone string, amount decimal.Decimal) error {
	challenge, err := g.challenges.Take(ctx, phone, func(c *core.VerificationChallenge) bool {
		return c.State == core.GateStateVerified && c.Amount.Equal(amount)
	})
	if err != nil {
		g.logger.Error("challenges.Take", "phone", phone, "err", err)
		return core.ErrNotVerified.With("", err)
	}

	if challenge == nil {
		return core.ErrNotVerified
	}

	return nil
}
