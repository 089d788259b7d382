// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"nebulaverse/database"
	"nebulaverse/models"
	"nebulaverse/utils"
)

// New returns a migrated SQLite database that is closed when t finishes.
func New(t testing.TB) (*sql.DB, database.Dialect) {
	t.Helper()

	dialect, err := database.DialectFor("sqlite3")
	require.NoError(t, err)

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := database.Open("sqlite3", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.CreateTables(db, dialect))
	return db, dialect
}

// CreateAccount inserts an account named username and returns it.
func CreateAccount(t testing.TB, db *sql.DB, username string) *models.Account {
	t.Helper()

	now := time.Now()
	a := &models.Account{
		ID:        utils.GenerateUUID(),
		Username:  username,
		Email:     username + "@example.com",
		Password:  "not-a-hash",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, database.NewAccountStore(db).Create(context.Background(), a))
	return a
}
