// Package sqlitetest opens throwaway in-memory databases with the full schema
// for tests of repositories and command handlers.
package sqlitetest

import (
	"fmt"
	"testing"

	"handoff/internal/adapters/out/postgres"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a migrated in-memory database private to t. It is closed when
// the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := postgres.Open(postgres.Options{Driver: postgres.DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, postgres.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
