package database

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// createTestDB creates a temporary test database
func createTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenCreatesTables(t *testing.T) {
	db := createTestDB(t)

	for _, table := range []string{"jobs", "kv"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not created: %v", table, err)
		}
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	db := createTestDB(t)

	if err := RunMigrations(db); err != nil {
		t.Fatalf("second migration run failed: %v", err)
	}
}

func TestKVPrimaryKey(t *testing.T) {
	db := createTestDB(t)

	if _, err := db.Exec(`INSERT INTO kv (key, value) VALUES ('saved-jobs', '[]')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO kv (key, value) VALUES ('saved-jobs', '[]')`); err == nil {
		t.Error("should have failed to insert duplicate key")
	}
}
