package api

import (
	"encoding/json"
	"io"

	"github.com/pandodao/zilt-wallet/core"
	"github.com/twitchtv/twirp"
)

// decodeIntent reads a transaction request keyed by its "type" field into
// the matching intent variant.
func decodeIntent(r io.Reader) (core.Intent, error) {
	raw, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return nil, twirp.InvalidArgument.Error("malformed request body")
	}

	var head struct {
		Type core.TransactionType `json:"type"`
	}

	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, twirp.InvalidArgument.Error("malformed request body")
	}

	var intent core.Intent
	switch head.Type {
	case core.TransactionTypeDeposit:
		var v core.DepositIntent
		err = json.Unmarshal(raw, &v)
		intent = v
	case core.TransactionTypeWithdrawal:
		var v core.WithdrawIntent
		err = json.Unmarshal(raw, &v)
		intent = v
	case core.TransactionTypeTransfer:
		var v core.SendIntent
		err = json.Unmarshal(raw, &v)
		intent = v
	default:
		return nil, twirp.InvalidArgument.Error("unknown transaction type").WithMeta("type", string(head.Type))
	}

	if err != nil {
		return nil, twirp.InvalidArgument.Error("malformed " + string(head.Type) + " request")
	}

	return intent, nil
}
