package main

import (
	"context"

	"github.com/slugger-analytics/clubhouse-migrate/internal/formatter"
	"github.com/slugger-analytics/clubhouse-migrate/internal/migrate"
	"github.com/slugger-analytics/clubhouse-migrate/internal/report"
	"github.com/urfave/cli/v3"
)

// MigrateRun runs the full Supabase → Aurora migration.
func (r *Runner) MigrateRun(ctx context.Context, cmd *cli.Command) error {
	cfg := r.loadConfig(cmd)

	src, srcCleanup, err := r.buildSource(ctx, cfg, cmd.String("strategy"))
	if err != nil {
		return err
	}
	defer srcCleanup()

	dest, destCleanup, err := r.openDestination(ctx, cfg)
	if err != nil {
		return err
	}
	defer destCleanup()

	engine := migrate.NewEngine(src, dest, r.logger)

	r.writePlainHeader("ClubhouseWidget: Supabase to Aurora Migration")
	r.writePlain("Source: %s\n\n", src.Name())

	// Progress channel with a goroutine to print updates as they arrive
	progressCh := make(chan migrate.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case migrate.FetchSource:
				r.writePlain("📥 %s\n", update.Message)
			case migrate.BuildDirectory:
				r.writePlain("\n🔎 %s\n\n", update.Message)
			case migrate.MigrateTable:
				r.writePlain("   %s\n", update.Message)
			case migrate.Verify:
				r.writePlain("✓ %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Run(ctx, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(result, true); err != nil {
			return err
		}
	} else {
		r.writePlain("\n%s\n", formatter.Summary(result))
	}

	reportPath := cmd.String("report")
	if reportPath == "" {
		reportPath = cfg.Report.Output
	}
	if reportPath != "" {
		if err := formatter.WriteJSONReport(result, reportPath); err != nil {
			return err
		}
		r.logger.Info("report written", "path", reportPath)
	}

	if csvPath := cmd.String("unmapped-csv"); csvPath != "" && len(result.UnmappedUsers()) > 0 {
		if err := formatter.WriteUnmappedCSV(result, csvPath); err != nil {
			return err
		}
		r.logger.Info("unmapped users written", "path", csvPath)
	}

	if cmd.Bool("archive") && cfg.Report.S3Bucket != "" {
		archiver, err := report.NewArchiver(ctx, cfg.Report.S3Bucket, cfg.Report.S3Prefix, cfg.Destination.Region)
		if err != nil {
			return err
		}
		key, err := archiver.Archive(ctx, result)
		if err != nil {
			return err
		}
		r.logger.Info("report archived", "bucket", cfg.Report.S3Bucket, "key", key)
	}

	return nil
}

// MigrateVerify reports destination row counts without migrating anything.
func (r *Runner) MigrateVerify(ctx context.Context, cmd *cli.Command) error {
	cfg := r.loadConfig(cmd)

	dest, destCleanup, err := r.openDestination(ctx, cfg)
	if err != nil {
		return err
	}
	defer destCleanup()

	engine := migrate.NewEngine(nil, dest, r.logger)
	counts, err := engine.Verify(ctx, nil)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(counts, true)
	}

	r.writePlain("Destination row counts:\n")
	for _, table := range migrate.DestinationTables() {
		r.writePlain("  %-20s %d\n", table, counts[table])
	}
	return nil
}
