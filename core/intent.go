package core

import "github.com/shopspring/decimal"

// Intent is a user request to move money. It is one of DepositIntent,
// WithdrawIntent or SendIntent.
type Intent interface {
	TransactionType() TransactionType
	intent()
}

type DepositIntent struct {
	Amount decimal.Decimal `json:"amount"`
	Method PaymentMethod   `json:"method"`
	Phone  string          `json:"phone,omitempty"`
}

type WithdrawIntent struct {
	Amount      decimal.Decimal `json:"amount"`
	Destination string          `json:"destination"`
}

type SendIntent struct {
	Amount    decimal.Decimal `json:"amount"`
	Recipient string          `json:"recipient"`
	Note      string          `json:"note,omitempty"`
}

func (DepositIntent) TransactionType() TransactionType  { return TransactionTypeDeposit }
func (WithdrawIntent) TransactionType() TransactionType { return TransactionTypeWithdrawal }
func (SendIntent) TransactionType() TransactionType     { return TransactionTypeTransfer }

func (DepositIntent) intent()  {}
func (WithdrawIntent) intent() {}
func (SendIntent) intent()     {}
