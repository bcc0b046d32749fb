package testhelpers

import (
	"database/sql"
	"embed"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/database"
)

// Schemas holds the POS target schema per dialect, as golang-migrate
// migrations under schema/postgres and schema/sqlite.
//
//go:embed schema
var Schemas embed.FS

// SQLiteIdentityTable is the identity table of the SQLite schema.
const SQLiteIdentityTable = "identities"

// NewSQLiteDB creates a file-backed SQLite database with the POS schema
// applied and returns its path. The file is removed when the test ends.
func NewSQLiteDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pos.db")

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := database.RunMigrations(db, "sqlite3", Schemas, "schema/sqlite", zap.NewNop()); err != nil {
		t.Fatalf("failed to apply sqlite schema: %v", err)
	}
	return path
}

// OpenSQLite opens a database created by NewSQLiteDB for direct inspection.
func OpenSQLite(t *testing.T, path string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}
