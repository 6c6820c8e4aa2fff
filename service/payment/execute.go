package payment

import (
	"context"
	"fmt"

	"github.com/pandodao/zilt-wallet/core"
)

// Execute dispatches an intent to the matching operation.
func (s *Service) Execute(ctx context.Context, intent core.Intent) (*core.Transaction, error) {
	switch v := intent.(type) {
	case core.DepositIntent:
		return s.Deposit(ctx, v.Amount, v.Method, v.Phone)
	case core.WithdrawIntent:
		return s.Withdraw(ctx, v.Amount, v.Destination)
	case core.SendIntent:
		return s.Send(ctx, v.Amount, v.Recipient, v.Note)
	default:
		return nil, core.ErrValidation.With(fmt.Sprintf("unsupported intent %T", intent), nil)
	}
}
