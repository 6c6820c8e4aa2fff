package transaction

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pandodao/zilt-wallet/core"
	"github.com/pandodao/zilt-wallet/store"
	"github.com/tsenart/nap"
)

func New(db *nap.DB) core.TransactionStore {
	transactions, err := lru.New[string, *core.Transaction](512)
	if err != nil {
		panic(err)
	}

	return &transactionStore{
		db:           db,
		sb:           store.Builder(db),
		transactions: transactions,
	}
}

// transactionStore mirrors ledger history locally. Rows are immutable, so
// lookups by id are cached.
type transactionStore struct {
	db           *nap.DB
	sb           sq.StatementBuilderType
	transactions *lru.Cache[string, *core.Transaction]
}

func (s *transactionStore) Save(ctx context.Context, accountRef string, transactions []*core.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	tx, err := s.db.Master().BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	for _, t := range transactions {
		b := s.sb.Insert("transactions").
			Columns(append([]string{"account_ref"}, scanColumns...)...).
			Values(accountRef, t.ID, t.Type, t.Amount, t.Fee, t.Currency, t.Status, t.CounterpartyRef, t.Note, t.CreatedAt.UTC()).
			Suffix("ON CONFLICT (id) DO NOTHING")

		if _, err := b.RunWith(tx).ExecContext(ctx); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *transactionStore) List(ctx context.Context, accountRef string, limit int) ([]*core.Transaction, error) {
	b := s.sb.Select(scanColumns...).
		From("transactions").
		Where(sq.Eq{"account_ref": accountRef}).
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit))

	rows, err := b.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var transactions []*core.Transaction
	for rows.Next() {
		var t core.Transaction
		if err := scanTransaction(rows, &t); err != nil {
			return nil, err
		}

		transactions = append(transactions, &t)
	}

	return transactions, rows.Err()
}

func (s *transactionStore) Find(ctx context.Context, accountRef, id string) (*core.Transaction, error) {
	key := accountRef + "/" + id
	if t, ok := s.transactions.Get(key); ok {
		return t, nil
	}

	b := s.sb.Select(scanColumns...).
		From("transactions").
		Where(sq.Eq{"id": id, "account_ref": accountRef})

	var t core.Transaction
	if err := scanTransaction(b.RunWith(s.db).QueryRowContext(ctx), &t); err != nil {
		return nil, err
	}

	s.transactions.Add(key, &t)
	return &t, nil
}

func (s *transactionStore) Delete(ctx context.Context, accountRef string) error {
	_, err := s.sb.Delete("transactions").
		Where(sq.Eq{"account_ref": accountRef}).
		RunWith(s.db).
		ExecContext(ctx)

	s.transactions.Purge()
	return err
}
