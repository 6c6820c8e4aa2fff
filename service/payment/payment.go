package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/pandodao/zilt-wallet/core"
	"github.com/pandodao/zilt-wallet/store"
	"github.com/shopspring/decimal"
	"github.com/zyedidia/generic/mapset"
	"golang.org/x/sync/singleflight"
)

type Config struct {
	Currency      string `valid:"required"`
	AddressPrefix string `valid:"required"`
	AddressLength int    `valid:"required"`
	// GatedMethods overrides which deposit methods need phone verification.
	GatedMethods []string
}

func New(
	session core.IdentitySession,
	gate core.VerificationGate,
	fees core.FeePolicy,
	signer core.SignerService,
	submitter core.SubmitService,
	ledger core.LedgerService,
	cache core.WalletCache,
	history core.TransactionStore,
	metrics *Metrics,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	gated := mapset.New[core.PaymentMethod]()
	if len(cfg.GatedMethods) == 0 {
		for _, m := range core.PaymentMethods {
			if m.RequiresVerification() {
				gated.Put(m)
			}
		}
	}

	for _, m := range cfg.GatedMethods {
		gated.Put(core.PaymentMethod(m))
	}

	return &Service{
		session:   session,
		gate:      gate,
		fees:      fees,
		signer:    signer,
		submitter: submitter,
		ledger:    ledger,
		cache:     cache,
		history:   history,
		metrics:   metrics,
		logger:    logger.With("service", "payment"),
		cfg:       cfg,
		gated:     gated,
		sf:        &singleflight.Group{},
		now:       time.Now,
	}
}

// Service turns intents into signed, submitted and recorded transactions and
// keeps the wallet cache in step with the ledger.
type Service struct {
	session   core.IdentitySession
	gate      core.VerificationGate
	fees      core.FeePolicy
	signer    core.SignerService
	submitter core.SubmitService
	ledger    core.LedgerService
	cache     core.WalletCache
	history   core.TransactionStore
	metrics   *Metrics
	logger    *slog.Logger
	cfg       Config
	gated     mapset.Set[core.PaymentMethod]
	sf        *singleflight.Group
	now       func() time.Time

	// accounts serializes every cache write of one account: deposits,
	// debits and ledger fetches
	accounts sync.Map
}

func (s *Service) lockAccount(accountRef string) func() {
	v, _ := s.accounts.LoadOrStore(accountRef, &sync.Mutex{})
	mux := v.(*sync.Mutex)
	mux.Lock()
	return mux.Unlock
}

func (s *Service) RequiresVerification(method core.PaymentMethod) bool {
	return s.gated.Has(method)
}

func (s *Service) EstimateFee(t core.TransactionType, amount decimal.Decimal) decimal.Decimal {
	return s.fees.ComputeFee(t, amount)
}

func (s *Service) Balance() core.Balance {
	return s.cache.Balance()
}

func (s *Service) GetTransaction(id string) (*core.Transaction, bool) {
	return s.cache.Find(id)
}

// FindTransaction looks id up in the cache, then in the local mirror of the
// account history. It returns nil when neither knows the transaction.
func (s *Service) FindTransaction(ctx context.Context, id string) (*core.Transaction, error) {
	if tx, ok := s.cache.Find(id); ok {
		return tx, nil
	}

	current, err := s.session.Current(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.history.Find(ctx, current.AccountRef, id)
	if store.IsErrNotFound(err) {
		return nil, nil
	} else if err != nil {
		s.logger.Error("history.Find", "id", id, "err", err)
		return nil, core.ErrPersistence.With("read local history", err)
	}

	return tx, nil
}

func transactionID(signed *core.SignedPayment) string {
	if signed.ArtifactID != "" {
		return signed.ArtifactID
	}

	h := sha256.Sum256([]byte(signed.Artifact))
	return hex.EncodeToString(h[:])
}
