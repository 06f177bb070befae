// package staging provides the local sqlite snapshot of exported source tables.
//
// "snapshot fetch" writes every source table into the staging database so a
// migration can later run offline ("staging" strategy) or be inspected before
// touching the destination. Store implements [source.Source] for reads.
package staging

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/slugger-analytics/clubhouse-migrate/internal/shared"
	"github.com/slugger-analytics/clubhouse-migrate/internal/source"
)

// Store persists staged source rows in a local sqlite database.
type Store struct {
	db *sql.DB
}

// TableStatus summarizes one staged table.
type TableStatus struct {
	Table     string    `json:"table"`
	RowCount  int       `json:"row_count"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Open opens (or creates) the staging database at path and applies pending
// schema migrations. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := shared.NewStagingDatabase(path)
	if err != nil {
		return nil, err
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate staging database: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStore wraps an already-open staging database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name returns the strategy name.
func (s *Store) Name() string {
	return "staging"
}

// Fetch returns the staged rows of the named table in export order.
func (s *Store) Fetch(ctx context.Context, table string) ([]source.Row, error) {
	if !source.KnownTable(table) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownTable, table)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT payload FROM staged_rows WHERE table_name = ? ORDER BY position", table)
	if err != nil {
		return nil, fmt.Errorf("%w: read staged %s: %v", shared.ErrSourceUnavailable, table, err)
	}
	defer rows.Close()

	var result []source.Row
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan staged %s row: %w", table, err)
		}

		var record source.Row
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, fmt.Errorf("failed to decode staged %s row: %w", table, err)
		}
		result = append(result, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate staged %s rows: %w", table, err)
	}

	return result, nil
}

// Snapshot replaces the staged rows of the named table with the given rows.
// The replacement is transactional so a failed snapshot never leaves a table
// half staged.
func (s *Store) Snapshot(ctx context.Context, table string, records []source.Row) error {
	if !source.KnownTable(table) {
		return fmt.Errorf("%w: %s", shared.ErrUnknownTable, table)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM staged_rows WHERE table_name = ?", table); err != nil {
		return fmt.Errorf("failed to clear staged %s rows: %w", table, err)
	}

	for i, record := range records {
		payload, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to encode %s row %d: %w", table, i, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO staged_rows (table_name, position, payload) VALUES (?, ?, ?)",
			table, i, string(payload)); err != nil {
			return fmt.Errorf("failed to stage %s row %d: %w", table, i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO staged_tables (table_name, row_count, fetched_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(table_name) DO UPDATE SET
			row_count = excluded.row_count,
			fetched_at = excluded.fetched_at
	`, table, len(records)); err != nil {
		return fmt.Errorf("failed to record snapshot of %s: %w", table, err)
	}

	return tx.Commit()
}

// Status returns a summary of every staged table.
func (s *Store) Status(ctx context.Context) ([]TableStatus, error) {
	var statuses []TableStatus
	for _, table := range source.Tables {
		var st TableStatus
		st.Table = table
		err := s.db.QueryRowContext(ctx,
			"SELECT row_count, fetched_at FROM staged_tables WHERE table_name = ?", table).
			Scan(&st.RowCount, &st.FetchedAt)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read status of %s: %w", table, err)
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// Clear removes every staged row and table record.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM staged_rows"); err != nil {
		return fmt.Errorf("failed to clear staged rows: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM staged_tables"); err != nil {
		return fmt.Errorf("failed to clear staged tables: %w", err)
	}
	return nil
}
