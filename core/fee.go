package core

import "github.com/shopspring/decimal"

type FeePolicy interface {
	ComputeFee(t TransactionType, amount decimal.Decimal) decimal.Decimal
}
