package staging

import (
	"context"
	"errors"
	"testing"

	"github.com/slugger-analytics/clubhouse-migrate/internal/shared"
	"github.com/slugger-analytics/clubhouse-migrate/internal/source"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SnapshotAndFetch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rows := []source.Row{
		{"id": float64(1), "team_name": "Tigers"},
		{"id": float64(2), "team_name": "Hawks"},
	}

	if err := store.Snapshot(ctx, "teams", rows); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	staged, err := store.Fetch(ctx, "teams")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(staged) != 2 {
		t.Fatalf("Fetch() rows = %v, want 2", len(staged))
	}
	if staged[0].String("team_name") != "Tigers" || staged[1].String("team_name") != "Hawks" {
		t.Errorf("Fetch() should preserve export order, got %v then %v",
			staged[0].String("team_name"), staged[1].String("team_name"))
	}
	if id, ok := staged[0].Int64("id"); !ok || id != 1 {
		t.Errorf("staged[0].id = %v, %v, want 1, true", id, ok)
	}
}

func TestStore_SnapshotReplaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := []source.Row{{"id": float64(1)}, {"id": float64(2)}, {"id": float64(3)}}
	if err := store.Snapshot(ctx, "games", first); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	second := []source.Row{{"id": float64(9)}}
	if err := store.Snapshot(ctx, "games", second); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	staged, err := store.Fetch(ctx, "games")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(staged) != 1 {
		t.Fatalf("Fetch() after re-snapshot = %v rows, want 1", len(staged))
	}
	if id, _ := staged[0].Int64("id"); id != 9 {
		t.Errorf("staged[0].id = %v, want 9", id)
	}
}

func TestStore_Status(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Snapshot(ctx, "teams", []source.Row{{"id": float64(1)}}); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if err := store.Snapshot(ctx, "meals", nil); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	statuses, err := store.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("Status() = %v entries, want 2", len(statuses))
	}

	// Status follows the fixed table order, so teams precedes meals.
	if statuses[0].Table != "teams" || statuses[0].RowCount != 1 {
		t.Errorf("statuses[0] = %+v, want teams with 1 row", statuses[0])
	}
	if statuses[1].Table != "meals" || statuses[1].RowCount != 0 {
		t.Errorf("statuses[1] = %+v, want meals with 0 rows", statuses[1])
	}
	if statuses[0].FetchedAt.IsZero() {
		t.Error("Status() should record a fetch time")
	}
}

func TestStore_Clear(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Snapshot(ctx, "inventory", []source.Row{{"id": float64(1)}}); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	staged, err := store.Fetch(ctx, "inventory")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(staged) != 0 {
		t.Errorf("Fetch() after Clear() = %v rows, want 0", len(staged))
	}

	statuses, err := store.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if len(statuses) != 0 {
		t.Errorf("Status() after Clear() = %v entries, want 0", len(statuses))
	}
}

func TestStore_UnknownTable(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Snapshot(ctx, "audit_log", nil); !errors.Is(err, shared.ErrUnknownTable) {
		t.Errorf("Snapshot() error = %v, want ErrUnknownTable", err)
	}
	if _, err := store.Fetch(ctx, "audit_log"); !errors.Is(err, shared.ErrUnknownTable) {
		t.Errorf("Fetch() error = %v, want ErrUnknownTable", err)
	}
}

func TestStore_FetchEmpty(t *testing.T) {
	store := openTestStore(t)

	staged, err := store.Fetch(context.Background(), "tasks")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(staged) != 0 {
		t.Errorf("Fetch() on unstaged table = %v rows, want 0", len(staged))
	}
}
