package fee

import (
	"github.com/pandodao/zilt-wallet/core"
	"github.com/shopspring/decimal"
)

type Config struct {
	TransferRate   decimal.Decimal
	WithdrawalRate decimal.Decimal
}

func DefaultConfig() Config {
	return Config{
		TransferRate:   decimal.New(1, -3),
		WithdrawalRate: decimal.New(2, -3),
	}
}

func New(cfg Config) core.FeePolicy {
	if cfg.TransferRate.IsNegative() || cfg.WithdrawalRate.IsNegative() {
		panic("fee: negative rate")
	}

	return &policy{cfg: cfg}
}

type policy struct {
	cfg Config
}

// ComputeFee is exact: no rounding is applied to amount * rate. Deposits
// carry no local fee, the signing provider reports their cost instead.
func (p *policy) ComputeFee(t core.TransactionType, amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}

	switch t {
	case core.TransactionTypeTransfer:
		return amount.Mul(p.cfg.TransferRate)
	case core.TransactionTypeWithdrawal:
		return amount.Mul(p.cfg.WithdrawalRate)
	default:
		return decimal.Zero
	}
}
