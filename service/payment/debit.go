package payment

import (
	"context"
	"time"

	"github.com/pandodao/zilt-wallet/core"
	"github.com/shopspring/decimal"
)

// Withdraw moves amount plus the withdrawal fee out to an external address.
func (s *Service) Withdraw(ctx context.Context, amount decimal.Decimal, destination string) (tx *core.Transaction, err error) {
	defer func(start time.Time) { s.metrics.observe("withdraw", start, err) }(time.Now())

	return s.debit(ctx, core.TransactionTypeWithdrawal, amount, destination, "")
}

// Send transfers amount to another wallet, note is attached verbatim.
func (s *Service) Send(ctx context.Context, amount decimal.Decimal, recipient, note string) (tx *core.Transaction, err error) {
	defer func(start time.Time) { s.metrics.observe("send", start, err) }(time.Now())

	return s.debit(ctx, core.TransactionTypeTransfer, amount, recipient, note)
}

func (s *Service) debit(ctx context.Context, t core.TransactionType, amount decimal.Decimal, counterparty, note string) (*core.Transaction, error) {
	id, err := s.session.Current(ctx)
	if err != nil {
		return nil, err
	}

	if !amount.IsPositive() {
		return nil, core.ErrInvalidAmount
	}

	if !s.ValidAddress(counterparty) {
		return nil, core.ErrInvalidAddress
	}

	unlock := s.lockAccount(id.AccountRef)
	defer unlock()

	logger := s.logger.With("op", t, "account", id.AccountRef, "counterparty", counterparty)

	estimate := s.fees.ComputeFee(t, amount)
	if err := s.checkFunds(amount, estimate); err != nil {
		logger.Debug("insufficient funds", "amount", amount, "fee", estimate, "balance", s.cache.Balance().Amount)
		return nil, err
	}

	signed, err := s.sign(ctx, logger, &core.PaymentRequest{
		SourceAsset:   s.cfg.Currency,
		Destination:   counterparty,
		DestAmount:    amount,
		DestAsset:     s.cfg.Currency,
		AccountRef:    id.AccountRef,
		SigningKeyRef: id.SigningKeyRef,
	})
	if err != nil {
		return nil, err
	}

	fee := estimate
	if signed.ReportedFee.Valid {
		fee = signed.ReportedFee.Decimal
	}

	// the network fee may exceed the estimate, never submit a debit the
	// balance cannot cover
	if err := s.checkFunds(amount, fee); err != nil {
		logger.Info("reported fee exceeds balance", "estimate", estimate, "reported", fee)
		return nil, err
	}

	if err := s.submit(ctx, logger, signed); err != nil {
		return nil, err
	}

	tx := &core.Transaction{
		ID:              transactionID(signed),
		Type:            t,
		Amount:          amount,
		Fee:             decimal.NewNullDecimal(fee),
		Currency:        s.cfg.Currency,
		Status:          core.TransactionStatusCompleted,
		CounterpartyRef: counterparty,
		Note:            note,
		CreatedAt:       s.now().UTC(),
	}

	if err := s.record(ctx, logger, id, tx); err != nil {
		return nil, err
	}

	logger.Info("debit completed", "id", tx.ID, "amount", amount, "fee", fee)
	return tx, nil
}

func (s *Service) checkFunds(amount, fee decimal.Decimal) error {
	balance := s.cache.Balance()
	if total := amount.Add(fee); total.GreaterThan(balance.Amount) {
		return core.ErrInsufficientFunds.With(
			"insufficient funds: need "+total.String()+" "+s.cfg.Currency+", have "+balance.Amount.String(),
			nil,
		)
	}

	return nil
}
