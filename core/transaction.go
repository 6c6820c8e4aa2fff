package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeTransfer   TransactionType = "transfer"
)

func (t TransactionType) IsDebit() bool {
	return t == TransactionTypeWithdrawal || t == TransactionTypeTransfer
}

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

type Transaction struct {
	ID              string              `json:"id"`
	Type            TransactionType     `json:"type"`
	Amount          decimal.Decimal     `json:"amount"`
	Fee             decimal.NullDecimal `json:"fee"`
	Currency        string              `json:"currency"`
	Status          TransactionStatus   `json:"status"`
	CounterpartyRef string              `json:"counterparty_ref,omitempty"`
	Note            string              `json:"note,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// BalanceEffect is the signed change this transaction applies to the
// balance: +amount for deposits, -(amount+fee) for debits.
func (t *Transaction) BalanceEffect() decimal.Decimal {
	if !t.Type.IsDebit() {
		return t.Amount
	}

	fee := decimal.Zero
	if t.Fee.Valid {
		fee = t.Fee.Decimal
	}

	return t.Amount.Add(fee).Neg()
}

// TransactionStore is the local durable mirror of the ledger history.
type TransactionStore interface {
	Save(ctx context.Context, accountRef string, transactions []*Transaction) error
	List(ctx context.Context, accountRef string, limit int) ([]*Transaction, error)
	// Find returns sql.ErrNoRows when accountRef has no transaction id.
	Find(ctx context.Context, accountRef, id string) (*Transaction, error)
	Delete(ctx context.Context, accountRef string) error
}
