package migrate

import "context"

// destinationTables maps each source table to the destination table it loads.
var destinationTables = map[string]string{
	"teams":     "clubhouse_teams",
	"users":     "clubhouse_users",
	"tasks":     "clubhouse_tasks",
	"games":     "clubhouse_games",
	"meals":     "clubhouse_meals",
	"inventory": "clubhouse_inventory",
}

// DestinationTables returns every destination table in migration order.
func DestinationTables() []string {
	return []string{
		"clubhouse_teams",
		"clubhouse_users",
		"clubhouse_tasks",
		"clubhouse_games",
		"clubhouse_meals",
		"clubhouse_inventory",
	}
}

// DirectoryEntry is one (email, identity token) pair from the destination's
// pre-existing SLUGGER user directory.
type DirectoryEntry struct {
	Email         string
	IdentityToken string
}

// Destination abstracts the Aurora connection the engine writes to.
type Destination interface {
	// BeginBatch starts a batch; all inserts for one table commit as a unit.
	BeginBatch(ctx context.Context) (Batch, error)

	// QueryDirectory returns every directory row with a non-null email.
	QueryDirectory(ctx context.Context) ([]DirectoryEntry, error)

	// CountRows counts rows in the named destination table.
	CountRows(ctx context.Context, table string) (int64, error)
}

// Batch is one table's worth of inserts committed together.
//
// A failed insert must not poison the rest of the batch: implementations
// isolate each statement (the Postgres implementation uses per-row
// savepoints) so the engine can drop the bad row and continue.
type Batch interface {
	// InsertReturningID executes a parameterized INSERT ... RETURNING id.
	InsertReturningID(ctx context.Context, query string, args ...any) (int64, error)

	// Insert executes a parameterized INSERT without capturing an id.
	Insert(ctx context.Context, query string, args ...any) error

	Commit() error
	Rollback() error
}
