package transaction

import (
	"github.com/pandodao/zilt-wallet/core"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

var scanColumns = []string{
	"id",
	"type",
	"amount",
	"fee",
	"currency",
	"status",
	"counterparty_ref",
	"note",
	"created_at",
}

func scanTransaction(scanner scanner, tx *core.Transaction) error {
	return scanner.Scan(
		&tx.ID,
		&tx.Type,
		&tx.Amount,
		&tx.Fee,
		&tx.Currency,
		&tx.Status,
		&tx.CounterpartyRef,
		&tx.Note,
		&tx.CreatedAt,
	)
}
