package migrate

import "fmt"

// ProgressUpdate represents a progress event during a migration run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	BuildDirectory
	MigrateTable
	Verify
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case BuildDirectory:
		return "build_directory"
	case MigrateTable:
		return "migrate_table"
	case Verify:
		return "verify"
	default:
		return ""
	}
}

func fetchTableUpdate(step, total int, table string, rows int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Exported %d rows from %s", rows, table),
	}
}

func directoryUpdate(size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildDirectory,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Mapped %d SLUGGER users by email", size),
	}
}

func migrateTableUpdate(step, total int, kind string, rows int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MigrateTable,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Migrating %d %s...", rows, kind),
	}
}

func tableDoneUpdate(step, total int, result TableResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MigrateTable,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Migrated %d of %d %s", result.Migrated, result.Attempted, result.Kind),
		Data:    result,
	}
}

func verifyUpdate(step, total int, table string, count int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Verify,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s: %d rows", table, count),
	}
}
