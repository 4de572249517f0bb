// Package testing provides test helpers shared by item-sentinel packages.
package testing

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/aristath/itemsentinel/internal/database"
)

// NewTestDB creates a file-backed database in a temp directory with its schema applied.
// It goes through database.New, so it exercises the production driver and PRAGMAs.
// Supported names: "market", "portfolio". Other names get an empty database.
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: database.ProfileStandard,
		Name:    name,
	})
	require.NoError(t, err, "failed to create test database %s", name)

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close test database %s: %v", name, err)
		}
	})

	require.NoError(t, db.Migrate(), "failed to migrate test database %s", name)

	return db
}

// NewMemoryDB opens an in-memory SQLite database with the named schema applied.
// The pool is pinned to one connection so every query sees the same memory database.
func NewMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = db.Close() })

	schema, err := database.Schema(name)
	require.NoError(t, err)

	_, err = db.Exec(schema)
	require.NoError(t, err, "failed to apply %s schema", name)

	return db
}
