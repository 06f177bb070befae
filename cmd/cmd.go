// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func strategyFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "strategy",
		Aliases: []string{"s"},
		Usage:   "Source strategy override (rest, sql, dir, staging)",
	}
}

// migrateCommand handles the migration run and verification
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Run or verify the Supabase to Aurora migration",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the full migration in dependency order",
				Flags: []cli.Flag{
					configFlag(),
					strategyFlag(),
					&cli.StringFlag{
						Name:  "report",
						Usage: "Path for the JSON run report (overrides config)",
					},
					&cli.StringFlag{
						Name:  "unmapped-csv",
						Usage: "Write unmapped user emails to this CSV file",
					},
					&cli.BoolFlag{
						Name:  "archive",
						Usage: "Upload the JSON report to the configured S3 bucket",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the run result as JSON instead of a summary",
					},
				},
				Action: r.MigrateRun,
			},
			{
				Name:  "verify",
				Usage: "Report destination row counts without migrating",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output counts as JSON",
					},
				},
				Action: r.MigrateVerify,
			},
		},
	}
}

// snapshotCommand handles local snapshots of the source tables
func snapshotCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Stage source tables locally for offline migration",
		Commands: []*cli.Command{
			{
				Name:  "fetch",
				Usage: "Export every source table into the local snapshot",
				Flags: []cli.Flag{
					configFlag(),
					strategyFlag(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Snapshot format: staging (sqlite) or dir (JSON files)",
						Value: "staging",
					},
				},
				Action: r.SnapshotFetch,
			},
			{
				Name:  "status",
				Usage: "Show staged table row counts and fetch times",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output status as JSON",
					},
				},
				Action: r.SnapshotStatus,
			},
			{
				Name:  "clear",
				Usage: "Remove all staged rows",
				Flags: []cli.Flag{
					configFlag(),
				},
				Action: r.SnapshotClear,
			},
		},
	}
}

// directoryCommand inspects the destination's SLUGGER user directory
func directoryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "directory",
		Usage: "Inspect the destination user directory used for identity linking",
		Flags: []cli.Flag{
			configFlag(),
			strategyFlag(),
			&cli.BoolFlag{
				Name:  "check",
				Usage: "Also list source user emails with no directory entry",
			},
		},
		Action: r.Directory,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and initialize the staging database",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.Setup,
	}
}
