package property

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pandodao/zilt-wallet/core"
	"github.com/pandodao/zilt-wallet/store"
	"github.com/tsenart/nap"
)

type propertyStore struct {
	db *nap.DB
	sb sq.StatementBuilderType
}

func New(db *nap.DB) core.PropertyStore {
	return &propertyStore{db: db, sb: store.Builder(db)}
}

func (s *propertyStore) Get(ctx context.Context, key string, value any) error {
	b := s.sb.Select("value").From("properties").Where(sq.Eq{"key": key})

	var raw []byte
	if err := b.RunWith(s.db).QueryRowContext(ctx).Scan(&raw); err == nil {
		return json.Unmarshal(raw, value)
	} else if store.IsErrNotFound(err) {
		return nil
	} else {
		return err
	}
}

func (s *propertyStore) Set(ctx context.Context, key string, value any) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	now := time.Now().UTC()
	r, err := s.sb.Update("properties").
		Set("value", string(jsonValue)).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", now).
		Where(sq.Eq{"key": key}).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to set property: %w", err)
	}

	n, err := r.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if n > 0 {
		return nil
	}

	_, err = s.sb.Insert("properties").
		Columns("key", "value", "updated_at").
		Values(key, string(jsonValue), now).
		RunWith(s.db).
		ExecContext(ctx)
	return err
}

func (s *propertyStore) Delete(ctx context.Context, key string) error {
	_, err := s.sb.Delete("properties").
		Where(sq.Eq{"key": key}).
		RunWith(s.db).
		ExecContext(ctx)
	return err
}
