package destination

import (
	"context"
	"errors"
	"testing"

	"github.com/slugger-analytics/clubhouse-migrate/internal/shared"
)

// Batch mechanics (savepoints, RETURNING, rollback) are exercised against an
// in-memory sqlite database, which shares the relevant SQL surface.
func openTestDestination(t *testing.T) *Postgres {
	t.Helper()
	db, err := shared.NewStagingDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := []string{
		`CREATE TABLE users (email TEXT, cognito_user_id TEXT)`,
		`CREATE TABLE clubhouse_teams (id INTEGER PRIMARY KEY AUTOINCREMENT, team_name TEXT NOT NULL)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to create schema: %v", err)
		}
	}

	return NewPostgres(db)
}

func TestPostgres_QueryDirectory(t *testing.T) {
	dest := openTestDestination(t)

	seed := []struct {
		email any
		token string
	}{
		{"jane@example.com", "idtok-99"},
		{nil, "idtok-orphan"},
		{"coach@example.com", "idtok-7"},
	}
	for _, row := range seed {
		if _, err := dest.DB().Exec(
			"INSERT INTO users (email, cognito_user_id) VALUES (?, ?)", row.email, row.token); err != nil {
			t.Fatalf("failed to seed directory: %v", err)
		}
	}

	entries, err := dest.QueryDirectory(context.Background())
	if err != nil {
		t.Fatalf("QueryDirectory() error = %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("QueryDirectory() = %v entries, want 2 (null email excluded)", len(entries))
	}
	if entries[0].Email != "jane@example.com" || entries[0].IdentityToken != "idtok-99" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
}

func TestPostgres_CountRows(t *testing.T) {
	dest := openTestDestination(t)
	ctx := context.Background()

	if _, err := dest.DB().Exec("INSERT INTO clubhouse_teams (team_name) VALUES ('Tigers')"); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	count, err := dest.CountRows(ctx, "clubhouse_teams")
	if err != nil {
		t.Fatalf("CountRows() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountRows() = %v, want 1", count)
	}

	t.Run("unknown table is rejected before querying", func(t *testing.T) {
		_, err := dest.CountRows(ctx, "sqlite_master")
		if !errors.Is(err, shared.ErrUnknownTable) {
			t.Errorf("CountRows() error = %v, want ErrUnknownTable", err)
		}
	})
}

func TestBatch_InsertReturningID(t *testing.T) {
	dest := openTestDestination(t)
	ctx := context.Background()

	batch, err := dest.BeginBatch(ctx)
	if err != nil {
		t.Fatalf("BeginBatch() error = %v", err)
	}

	id, err := batch.InsertReturningID(ctx,
		"INSERT INTO clubhouse_teams (team_name) VALUES (?) RETURNING id", "Tigers")
	if err != nil {
		t.Fatalf("InsertReturningID() error = %v", err)
	}
	if id == 0 {
		t.Error("InsertReturningID() should return the assigned id")
	}

	if err := batch.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	count, _ := dest.CountRows(ctx, "clubhouse_teams")
	if count != 1 {
		t.Errorf("row count after commit = %v, want 1", count)
	}
}

func TestBatch_FailedRowDoesNotPoisonBatch(t *testing.T) {
	dest := openTestDestination(t)
	ctx := context.Background()

	batch, err := dest.BeginBatch(ctx)
	if err != nil {
		t.Fatalf("BeginBatch() error = %v", err)
	}

	insert := "INSERT INTO clubhouse_teams (team_name) VALUES (?)"

	if err := batch.Insert(ctx, insert, "Tigers"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	// NOT NULL violation fails this row only.
	if err := batch.Insert(ctx, insert, nil); err == nil {
		t.Fatal("Insert() with null team_name expected error")
	}
	if err := batch.Insert(ctx, insert, "Hawks"); err != nil {
		t.Fatalf("Insert() after failed row error = %v", err)
	}

	if err := batch.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	count, _ := dest.CountRows(ctx, "clubhouse_teams")
	if count != 2 {
		t.Errorf("row count = %v, want 2 good rows committed", count)
	}
}

func TestBatch_Rollback(t *testing.T) {
	dest := openTestDestination(t)
	ctx := context.Background()

	batch, err := dest.BeginBatch(ctx)
	if err != nil {
		t.Fatalf("BeginBatch() error = %v", err)
	}
	if err := batch.Insert(ctx, "INSERT INTO clubhouse_teams (team_name) VALUES (?)", "Tigers"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := batch.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	count, _ := dest.CountRows(ctx, "clubhouse_teams")
	if count != 0 {
		t.Errorf("row count after rollback = %v, want 0", count)
	}
}
