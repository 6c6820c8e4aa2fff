package core

import (
	"context"

	"github.com/shopspring/decimal"
)

type Balance struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// LedgerService is the remote, authoritative store of balances and history.
type LedgerService interface {
	GetBalance(ctx context.Context, accountRef string) (*Balance, error)
	// ListTransactions returns the account history, newest first.
	ListTransactions(ctx context.Context, accountRef string) ([]*Transaction, error)
	AppendTransaction(ctx context.Context, accountRef string, transaction *Transaction) error
}
