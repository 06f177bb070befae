package migrate

import "time"

// TableResult summarizes the migration of one entity kind.
//
// Attempted counts every source row seen; Migrated counts successful inserts;
// Skipped counts rows dropped for unresolved hard dependencies (or, for
// users, unresolved identity); Failed counts rows the destination rejected.
type TableResult struct {
	Kind      string   `json:"kind"`
	Attempted int      `json:"attempted"`
	Migrated  int      `json:"migrated"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Unmapped  []string `json:"unmapped,omitempty"` // user emails with no directory entry
}

// RunResult contains everything a full migration run produced, for reporting.
type RunResult struct {
	RunID         string           `json:"run_id"`
	StartedAt     time.Time        `json:"started_at"`
	FinishedAt    time.Time        `json:"finished_at"`
	DirectorySize int              `json:"directory_size"`
	Tables        []TableResult    `json:"tables"`
	Counts        map[string]int64 `json:"destination_counts,omitempty"`
}

// TotalMigrated sums migrated rows across all tables.
func (r *RunResult) TotalMigrated() int {
	total := 0
	for _, t := range r.Tables {
		total += t.Migrated
	}
	return total
}

// UnmappedUsers returns the user emails that did not resolve in the directory.
func (r *RunResult) UnmappedUsers() []string {
	for _, t := range r.Tables {
		if t.Kind == "users" {
			return t.Unmapped
		}
	}
	return nil
}
