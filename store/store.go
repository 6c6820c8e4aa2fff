package store

import (
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/tsenart/nap"
)

func IsErrNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// Builder returns a statement builder using the placeholder format of the
// driver behind db.
func Builder(db *nap.DB) sq.StatementBuilderType {
	if _, ok := db.Master().Driver().(*pq.Driver); ok {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}

	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}
