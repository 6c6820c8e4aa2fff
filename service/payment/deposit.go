package payment

import (
	"context"
	"time"

	"github.com/pandodao/zilt-wallet/core"
	"github.com/shopspring/decimal"
)

// Deposit credits amount to the active wallet through method. Gated methods
// spend the verified challenge for (phone, amount).
func (s *Service) Deposit(ctx context.Context, amount decimal.Decimal, method core.PaymentMethod, phone string) (tx *core.Transaction, err error) {
	defer func(start time.Time) { s.metrics.observe("deposit", start, err) }(time.Now())

	id, err := s.session.Current(ctx)
	if err != nil {
		return nil, err
	}

	if !amount.IsPositive() {
		return nil, core.ErrInvalidAmount
	}

	if !method.IsValid() {
		return nil, core.ErrInvalidMethod
	}

	if s.RequiresVerification(method) {
		if phone == "" {
			return nil, core.ErrInvalidPhone
		}

		// spent before signing, a failed deposit needs a new code
		if err := s.gate.Consume(ctx, phone, amount); err != nil {
			return nil, err
		}
	}

	unlock := s.lockAccount(id.AccountRef)
	defer unlock()

	logger := s.logger.With("op", "deposit", "account", id.AccountRef, "method", method)

	signed, err := s.sign(ctx, logger, &core.PaymentRequest{
		SourceAsset:   string(method),
		SourceAmount:  decimal.NewNullDecimal(amount),
		Destination:   id.AccountRef,
		DestAmount:    amount,
		DestAsset:     s.cfg.Currency,
		AccountRef:    id.AccountRef,
		SigningKeyRef: id.SigningKeyRef,
	})
	if err != nil {
		return nil, err
	}

	if err := s.submit(ctx, logger, signed); err != nil {
		return nil, err
	}

	tx = &core.Transaction{
		ID:              transactionID(signed),
		Type:            core.TransactionTypeDeposit,
		Amount:          amount,
		Fee:             signed.ReportedFee,
		Currency:        s.cfg.Currency,
		Status:          core.TransactionStatusCompleted,
		CounterpartyRef: string(method),
		CreatedAt:       s.now().UTC(),
	}

	if err := s.record(ctx, logger, id, tx); err != nil {
		return nil, err
	}

	logger.Info("deposit completed", "id", tx.ID, "amount", amount)
	return tx, nil
}
