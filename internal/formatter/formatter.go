// package formatter renders migration run results as text, JSON and CSV
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/slugger-analytics/clubhouse-migrate/internal/migrate"
	"github.com/slugger-analytics/clubhouse-migrate/internal/shared"
)

// Summary renders a human-readable run summary.
func Summary(result *migrate.RunResult) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Run %s\n", result.RunID)
	fmt.Fprintf(&buf, "Directory entries: %d\n\n", result.DirectorySize)

	fmt.Fprintf(&buf, "%-12s %10s %10s %10s %10s\n", "table", "attempted", "migrated", "skipped", "failed")
	for _, t := range result.Tables {
		fmt.Fprintf(&buf, "%-12s %10d %10d %10d %10d\n", t.Kind, t.Attempted, t.Migrated, t.Skipped, t.Failed)
	}

	if unmapped := result.UnmappedUsers(); len(unmapped) > 0 {
		fmt.Fprintf(&buf, "\nUnmapped users (%d):\n", len(unmapped))
		for _, email := range unmapped {
			if email == "" {
				email = "(no email)"
			}
			fmt.Fprintf(&buf, "  %s\n", email)
		}
	}

	if len(result.Counts) > 0 {
		fmt.Fprintf(&buf, "\nDestination row counts:\n")
		for _, table := range migrate.DestinationTables() {
			fmt.Fprintf(&buf, "  %-20s %d\n", table, result.Counts[table])
		}
	}

	if !result.FinishedAt.IsZero() {
		fmt.Fprintf(&buf, "\nCompleted in %s\n", result.FinishedAt.Sub(result.StartedAt).Round(1e6))
	}
	buf.WriteString("Reruns append rows; clear the destination before re-running.\n")

	return buf.String()
}

// WriteJSONReport writes the run result as pretty-printed JSON to path.
func WriteJSONReport(result *migrate.RunResult, path string) error {
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// ExportUnmappedCSV converts the unmapped-user list to CSV with a single
// email column, for handoff to whoever reconciles accounts manually.
func ExportUnmappedCSV(result *migrate.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"email"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, email := range result.UnmappedUsers() {
		if err := writer.Write([]string{email}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteUnmappedCSV writes the unmapped-user CSV to path.
func WriteUnmappedCSV(result *migrate.RunResult, path string) error {
	data, err := ExportUnmappedCSV(result)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
