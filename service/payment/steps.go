package payment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pandodao/zilt-wallet/core"
)

func (s *Service) sign(ctx context.Context, logger *slog.Logger, req *core.PaymentRequest) (*core.SignedPayment, error) {
	signed, err := s.signer.CreatePayment(ctx, req)
	if err != nil {
		logger.Error("signer.CreatePayment", "err", err)
		return nil, core.ErrSigning.With("", err)
	}

	if signed.Artifact == "" {
		return nil, core.ErrSigning.With("signer returned an empty artifact", nil)
	}

	if signed.ReportedFee.Valid && signed.ReportedFee.Decimal.IsNegative() {
		return nil, core.ErrSigning.With(fmt.Sprintf("signer reported a negative fee %s", signed.ReportedFee.Decimal), nil)
	}

	return signed, nil
}

func (s *Service) submit(ctx context.Context, logger *slog.Logger, signed *core.SignedPayment) error {
	if err := s.submitter.Submit(ctx, signed.Artifact); err != nil {
		logger.Error("submitter.Submit", "err", err)
		return core.ErrSubmission.With("", err)
	}

	return nil
}

// record appends the completed transaction to the ledger and, only once that
// succeeded, reconciles the cache.
func (s *Service) record(ctx context.Context, logger *slog.Logger, id *core.WalletIdentity, tx *core.Transaction) error {
	if err := s.ledger.AppendTransaction(ctx, id.AccountRef, tx); err != nil {
		logger.Error("ledger.AppendTransaction", "id", tx.ID, "err", err)
		msg := fmt.Sprintf("transaction %s was submitted but could not be recorded, refresh to reconcile", tx.ID)
		return core.ErrPersistence.With(msg, err)
	}

	s.cache.Reconcile(tx)
	return nil
}
