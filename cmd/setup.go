package main

import (
	"context"
	"os"

	"github.com/slugger-analytics/clubhouse-migrate/internal/shared"
	"github.com/slugger-analytics/clubhouse-migrate/internal/staging"
	"github.com/urfave/cli/v3"
)

// Setup writes a starter config file and initializes the staging database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" {
		path = "config.toml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := shared.CreateConfigFile(path); err != nil {
			return err
		}
		r.logger.Infof("created config file at %s", path)
	} else {
		r.logger.Infof("config file %s already exists, leaving it in place", path)
	}

	cfg, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warnf("unable to read %s, using defaults: %v", path, err)
		cfg = shared.DefaultConfig()
	}
	cfg.ApplyEnv()

	store, err := staging.Open(cfg.Staging.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	r.logger.Infof("staging database ready at %s", cfg.Staging.Path)
	r.writePlain("Setup complete. Edit %s and set SUPABASE_ANON_KEY before migrating.\n", path)
	return nil
}
