package core

import "context"

// PropertyStore persists small JSON values by key. Get leaves value untouched
// when the key is missing.
type PropertyStore interface {
	Get(ctx context.Context, key string, value any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// Keys of the session state kept in the PropertyStore next to the identity.
const (
	PropertyBalanceSnapshot = "balance_snapshot"
	PropertyLastSyncAt      = "last_sync_at"
)
