// Package storetest opens a migrated sqlite database for store tests.
package storetest

import (
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pandodao/zilt-wallet/store/db"
	"github.com/tsenart/nap"
)

func Open(t *testing.T) *nap.DB {
	t.Helper()

	conn, err := nap.Open("sqlite3", filepath.Join(t.TempDir(), "wallet.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	t.Cleanup(func() { _ = conn.Close() })

	if err := db.Migrate(conn.Master(), "sqlite3"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return conn
}
