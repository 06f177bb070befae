package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/slugger-analytics/clubhouse-migrate/internal/destination"
	"github.com/slugger-analytics/clubhouse-migrate/internal/migrate"
	"github.com/slugger-analytics/clubhouse-migrate/internal/shared"
	"github.com/slugger-analytics/clubhouse-migrate/internal/source"
	"github.com/slugger-analytics/clubhouse-migrate/internal/staging"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer

	// Test seams: when non-nil these replace the configured source strategy
	// and destination connection.
	source source.Source
	dest   migrate.Destination
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	Logger      *log.Logger
	Output      io.Writer
	Source      source.Source
	Destination migrate.Destination
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
		source: opts.Source,
		dest:   opts.Destination,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, migrateCommand, snapshotCommand, directoryCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig reloads configuration from the command's --config flag when the
// file exists, then reapplies environment overrides.
func (r *Runner) loadConfig(cmd *cli.Command) *shared.Config {
	path := cmd.String("config")
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if cfg, err := shared.LoadConfig(path); err == nil {
				cfg.ApplyEnv()
				r.config = cfg
			} else {
				r.logger.Warn("failed to load config, keeping current", "path", path, "err", err)
			}
		}
	}
	return r.config
}

// buildSource assembles the configured retrieval strategy chain. The
// returned cleanup closes any connection the chain opened.
func (r *Runner) buildSource(ctx context.Context, cfg *shared.Config, strategy string) (source.Source, func(), error) {
	if r.source != nil {
		return r.source, func() {}, nil
	}

	if strategy == "" {
		strategy = cfg.Source.Strategy
	}
	cleanup := func() {}

	switch strategy {
	case "", "rest":
		chain := []source.Source{
			source.NewRESTSource(cfg.Source.URL, cfg.Source.AnonKey, cfg.Source.FetchLimit, cfg.Source.RateLimit, nil),
		}
		if cfg.Source.DatabaseURL != "" {
			db, err := shared.NewPostgresDatabase(ctx, cfg.Source.DatabaseURL)
			if err != nil {
				r.logger.Warn("direct source connection unavailable, REST only", "err", err)
			} else {
				chain = append(chain, source.NewSQLSource(db))
				cleanup = func() { db.Close() }
			}
		}
		return source.NewFallbackSource(r.logger, chain...), cleanup, nil

	case "sql":
		db, err := shared.NewPostgresDatabase(ctx, cfg.Source.DatabaseURL)
		if err != nil {
			return nil, cleanup, fmt.Errorf("%w: %v", shared.ErrSourceUnavailable, err)
		}
		return source.NewSQLSource(db), func() { db.Close() }, nil

	case "dir":
		return source.NewDirSource(cfg.Source.ExportDir), cleanup, nil

	case "staging":
		store, err := staging.Open(cfg.Staging.Path)
		if err != nil {
			return nil, cleanup, err
		}
		return store, func() { store.Close() }, nil

	default:
		return nil, cleanup, fmt.Errorf("%w: unknown source strategy %q", shared.ErrInvalidFlag, strategy)
	}
}

// openDestination resolves the Aurora connection string (environment or
// Secrets Manager) and connects.
func (r *Runner) openDestination(ctx context.Context, cfg *shared.Config) (migrate.Destination, func(), error) {
	if r.dest != nil {
		return r.dest, func() {}, nil
	}

	dsn, err := shared.ResolveDSN(ctx, cfg.Destination)
	if err != nil {
		return nil, nil, err
	}

	pg, err := destination.Open(ctx, dsn, cfg.Destination.MaxOpenConns, cfg.Destination.MaxIdleConns)
	if err != nil {
		return nil, nil, err
	}
	return pg, func() { pg.Close() }, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
