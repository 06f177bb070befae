package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slugger-analytics/clubhouse-migrate/internal/shared"
	"github.com/slugger-analytics/clubhouse-migrate/internal/source"
)

// Engine orchestrates a full migration run against one destination connection.
//
// Strictly sequential: every stage depends on key maps produced by earlier
// stages, so there is nothing to parallelize. Per-row failures are isolated
// inside each stage; batch- and connection-level failures abort the run.
type Engine struct {
	source source.Source
	dest   Destination
	logger *log.Logger
	now    func() time.Time
}

// NewEngine creates an Engine over the given source strategy and destination.
func NewEngine(src source.Source, dest Destination, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		source: src,
		dest:   dest,
		logger: logger,
		now:    time.Now,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run executes the full migration: export every source table, build the
// SLUGGER identity map, migrate tables in foreign-key order, then verify
// destination row counts.
//
// Fatal errors (nothing exported, directory query failed, batch commit
// failed) return a non-nil error; per-row skips and failures are reported in
// the RunResult instead. Reruns append; the engine never upserts.
func (e *Engine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*RunResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: no source strategy configured", shared.ErrSourceUnavailable)
	}
	if e.dest == nil {
		return nil, fmt.Errorf("%w: no destination configured", shared.ErrDestinationUnavailable)
	}

	start := e.now()
	result := &RunResult{
		RunID:     shared.GenerateID(),
		StartedAt: start,
	}

	tables := make(map[string][]source.Row, len(source.Tables))
	exported := 0
	for i, table := range source.Tables {
		rows, err := e.source.Fetch(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", table, err)
		}
		tables[table] = rows
		exported += len(rows)
		e.logger.Info("exported table", "table", table, "rows", len(rows), "source", e.source.Name())
		e.sendProgress(progress, fetchTableUpdate(i+1, len(source.Tables), table, len(rows)))
	}

	if exported == 0 {
		return nil, shared.ErrNoData
	}

	identity, err := BuildIdentityMap(ctx, e.dest)
	if err != nil {
		return nil, err
	}
	result.DirectorySize = len(identity)
	e.logger.Info("built identity map", "entries", len(identity))
	e.sendProgress(progress, directoryUpdate(len(identity)))

	teams := NewKeyMap("teams")
	users := NewKeyMap("users")
	games := NewKeyMap("games")
	meals := NewKeyMap("meals")

	// Fixed by the foreign-key graph; must not be reordered.
	stages := []struct {
		table string
		run   func(ctx context.Context, batch Batch, rows []source.Row) TableResult
	}{
		{"teams", func(ctx context.Context, batch Batch, rows []source.Row) TableResult {
			return e.migrateTeams(ctx, batch, rows, teams, start)
		}},
		{"users", func(ctx context.Context, batch Batch, rows []source.Row) TableResult {
			return e.migrateUsers(ctx, batch, rows, identity, teams, users, start)
		}},
		{"tasks", func(ctx context.Context, batch Batch, rows []source.Row) TableResult {
			return e.migrateTasks(ctx, batch, rows, users, start)
		}},
		{"games", func(ctx context.Context, batch Batch, rows []source.Row) TableResult {
			return e.migrateGames(ctx, batch, rows, teams, games, start)
		}},
		{"meals", func(ctx context.Context, batch Batch, rows []source.Row) TableResult {
			return e.migrateMeals(ctx, batch, rows, games, meals, start)
		}},
		{"inventory", func(ctx context.Context, batch Batch, rows []source.Row) TableResult {
			return e.migrateInventory(ctx, batch, rows, teams, meals, start)
		}},
	}

	for i, stage := range stages {
		rows := tables[stage.table]
		e.sendProgress(progress, migrateTableUpdate(i+1, len(stages), stage.table, len(rows)))

		tableResult, err := e.runStage(ctx, stage.run, rows)
		if err != nil {
			return result, err
		}

		result.Tables = append(result.Tables, tableResult)
		e.logger.Info("migrated table",
			"table", stage.table,
			"migrated", tableResult.Migrated,
			"skipped", tableResult.Skipped,
			"failed", tableResult.Failed,
		)
		e.sendProgress(progress, tableDoneUpdate(i+1, len(stages), tableResult))
	}

	if unmapped := result.UnmappedUsers(); len(unmapped) > 0 {
		e.logger.Warn("unmapped users", "count", len(unmapped), "emails", unmapped)
	}

	counts, err := e.Verify(ctx, progress)
	if err != nil {
		return result, err
	}
	result.Counts = counts
	result.FinishedAt = e.now()

	return result, nil
}

// runStage migrates one table inside its own batch. A commit failure rolls
// the batch back and aborts the run; already-committed tables stay migrated.
func (e *Engine) runStage(ctx context.Context, run func(context.Context, Batch, []source.Row) TableResult, rows []source.Row) (TableResult, error) {
	batch, err := e.dest.BeginBatch(ctx)
	if err != nil {
		return TableResult{}, fmt.Errorf("%w: begin: %v", shared.ErrBatchAborted, err)
	}

	result := run(ctx, batch, rows)

	if err := batch.Commit(); err != nil {
		_ = batch.Rollback()
		return result, fmt.Errorf("%w: commit %s: %v", shared.ErrBatchAborted, result.Kind, err)
	}

	return result, nil
}

// Verify counts rows in every destination table. A sanity check, not a
// correctness proof: skips are expected, so counts are reported rather than
// compared against the source.
func (e *Engine) Verify(ctx context.Context, progress chan<- ProgressUpdate) (map[string]int64, error) {
	if e.dest == nil {
		return nil, fmt.Errorf("%w: no destination configured", shared.ErrDestinationUnavailable)
	}

	tables := DestinationTables()
	counts := make(map[string]int64, len(tables))
	for i, table := range tables {
		count, err := e.dest.CountRows(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = count
		e.logger.Info("verified table", "table", table, "rows", count)
		e.sendProgress(progress, verifyUpdate(i+1, len(tables), table, count))
	}

	return counts, nil
}
