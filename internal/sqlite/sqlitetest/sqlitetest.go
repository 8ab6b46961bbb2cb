// Package sqlitetest provides in-memory stores for tests in other packages.
package sqlitetest

import (
	"testing"

	"github.com/joaodperes/stardust/internal/sqlite"
	"github.com/stretchr/testify/require"
)

// NewDB opens a migrated in-memory database closed at test cleanup.
func NewDB(t testing.TB) *sqlite.DB {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err, "failed to create test database")
	require.NoError(t, db.RunMigrations(), "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// NewStore returns a KVStore over a fresh in-memory database.
func NewStore(t testing.TB) *sqlite.KVStore {
	t.Helper()
	return sqlite.NewKVStore(NewDB(t))
}
