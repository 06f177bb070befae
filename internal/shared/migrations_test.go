package shared

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&count)
	if err != nil {
		t.Fatalf("failed to check table %s: %v", name, err)
	}
	return count > 0
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("loadMigrations() error = %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("loadMigrations() returned no migrations")
	}

	for i, m := range migrations {
		if m.Up == "" || m.Down == "" {
			t.Errorf("migration %d incomplete: up=%v down=%v", m.Version, m.Up != "", m.Down != "")
		}
		if i > 0 && migrations[i-1].Version >= m.Version {
			t.Error("migrations should be sorted by version")
		}
	}
}

func TestRunMigrations(t *testing.T) {
	db := openTestDB(t)

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	for _, table := range []string{"schema_migrations", "staged_rows", "staged_tables"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s should exist after migrations", table)
		}
	}

	t.Run("idempotent", func(t *testing.T) {
		if err := RunMigrations(db); err != nil {
			t.Errorf("RunMigrations() second run error = %v", err)
		}
	})
}

func TestRollbackMigration(t *testing.T) {
	db := openTestDB(t)

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	if err := RollbackMigration(db); err != nil {
		t.Fatalf("RollbackMigration() error = %v", err)
	}

	if tableExists(t, db, "staged_rows") {
		t.Error("staged_rows should be dropped after rollback")
	}

	t.Run("nothing to rollback", func(t *testing.T) {
		if err := RollbackMigration(db); err == nil {
			t.Error("RollbackMigration() expected error with no applied migrations")
		}
	})
}

func TestRemoveComments(t *testing.T) {
	input := "CREATE TABLE t ( -- trailing comment\n  id INTEGER -- another\n)"
	got := removeComments(input)

	if got != "CREATE TABLE t (\nid INTEGER\n)" {
		t.Errorf("removeComments() = %q", got)
	}
}
