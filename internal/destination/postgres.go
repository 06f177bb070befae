// Package destination provides the Aurora PostgreSQL implementation of the
// engine's destination boundary (pgx stdlib driver).
package destination

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/slugger-analytics/clubhouse-migrate/internal/migrate"
	"github.com/slugger-analytics/clubhouse-migrate/internal/shared"
)

// Compile-time contract assertion ensuring the store satisfies the engine interface.
var _ migrate.Destination = (*Postgres)(nil)

// Postgres is the Aurora-backed destination. One connection pool is shared
// for the whole run; batches map to transactions.
type Postgres struct {
	db *sql.DB
}

// Open connects to the destination and verifies it is reachable.
func Open(ctx context.Context, dsn string, maxOpenConns, maxIdleConns int) (*Postgres, error) {
	db, err := shared.NewPostgresDatabase(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if maxOpenConns > 0 {
		shared.ConfigureDatabase(db, maxOpenConns, maxIdleConns)
	}
	return &Postgres{db: db}, nil
}

// NewPostgres wraps an already-open destination connection.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Close closes the underlying database.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (p *Postgres) DB() *sql.DB { return p.db }

// BeginBatch starts one table's transaction.
func (p *Postgres) BeginBatch(ctx context.Context) (migrate.Batch, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &batch{ctx: ctx, tx: tx}, nil
}

// QueryDirectory reads the pre-existing SLUGGER user directory.
func (p *Postgres) QueryDirectory(ctx context.Context) ([]migrate.DirectoryEntry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT email, cognito_user_id
		FROM users
		WHERE email IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDirectoryQuery, err)
	}
	defer rows.Close()

	var entries []migrate.DirectoryEntry
	for rows.Next() {
		var entry migrate.DirectoryEntry
		if err := rows.Scan(&entry.Email, &entry.IdentityToken); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", shared.ErrDirectoryQuery, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDirectoryQuery, err)
	}

	return entries, nil
}

// CountRows counts rows in the named destination table. Table names are
// validated against the fixed destination set before interpolation.
func (p *Postgres) CountRows(ctx context.Context, table string) (int64, error) {
	known := false
	for _, t := range migrate.DestinationTables() {
		if t == table {
			known = true
			break
		}
	}
	if !known {
		return 0, fmt.Errorf("%w: %s", shared.ErrUnknownTable, table)
	}

	var count int64
	err := p.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

// batch wraps one transaction, isolating each insert behind a savepoint so a
// rejected row cannot poison the statements that follow it.
type batch struct {
	ctx context.Context
	tx  *sql.Tx
}

func (b *batch) InsertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	if _, err := b.tx.ExecContext(ctx, "SAVEPOINT migrate_row"); err != nil {
		return 0, fmt.Errorf("failed to set savepoint: %w", err)
	}

	var id int64
	if err := b.tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if _, rbErr := b.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT migrate_row"); rbErr != nil {
			return 0, fmt.Errorf("%w: row failed (%v) and savepoint rollback failed: %v", shared.ErrBatchAborted, err, rbErr)
		}
		return 0, err
	}

	if _, err := b.tx.ExecContext(ctx, "RELEASE SAVEPOINT migrate_row"); err != nil {
		return 0, fmt.Errorf("failed to release savepoint: %w", err)
	}
	return id, nil
}

func (b *batch) Insert(ctx context.Context, query string, args ...any) error {
	if _, err := b.tx.ExecContext(ctx, "SAVEPOINT migrate_row"); err != nil {
		return fmt.Errorf("failed to set savepoint: %w", err)
	}

	if _, err := b.tx.ExecContext(ctx, query, args...); err != nil {
		if _, rbErr := b.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT migrate_row"); rbErr != nil {
			return fmt.Errorf("%w: row failed (%v) and savepoint rollback failed: %v", shared.ErrBatchAborted, err, rbErr)
		}
		return err
	}

	if _, err := b.tx.ExecContext(ctx, "RELEASE SAVEPOINT migrate_row"); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

func (b *batch) Commit() error {
	return b.tx.Commit()
}

func (b *batch) Rollback() error {
	return b.tx.Rollback()
}
