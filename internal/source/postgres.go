// Direct PostgreSQL [Source] implementation, the fallback the REST strategy
// reaches for when the project gateway is unreachable.
package source

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/slugger-analytics/clubhouse-migrate/internal/shared"
)

// SQLSource implements Source over a direct database connection to the
// Supabase project (pgx stdlib driver).
type SQLSource struct {
	db *sql.DB
}

// NewSQLSource creates a SQL source over an open source-database connection.
func NewSQLSource(db *sql.DB) *SQLSource {
	return &SQLSource{db: db}
}

// Name returns the strategy name.
func (s *SQLSource) Name() string {
	return "direct-sql"
}

// Fetch runs SELECT * against the named table and converts each record to a Row.
// Table names are validated against the fixed table set before being
// interpolated into the query.
func (s *SQLSource) Fetch(ctx context.Context, table string) ([]Row, error) {
	if !KnownTable(table) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownTable, table)
	}
	if s.db == nil {
		return nil, fmt.Errorf("%w: source database not connected", shared.ErrSourceUnavailable)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", table))
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", shared.ErrSourceUnavailable, table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns for %s: %w", table, err)
	}

	var result []Row
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}

		record := make(Row, len(columns))
		for i, col := range columns {
			record[col] = normalizeScanned(values[i])
		}
		result = append(result, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", table, err)
	}

	return result, nil
}

// normalizeScanned converts driver byte slices to strings so Row accessors
// behave identically across strategies.
func normalizeScanned(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
