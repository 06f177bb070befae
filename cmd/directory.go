package main

import (
	"context"

	"github.com/slugger-analytics/clubhouse-migrate/internal/migrate"
	"github.com/urfave/cli/v3"
)

// Directory inspects the destination's SLUGGER user directory before a run.
//
// With --check it also fetches the source users table and lists every email
// that would be reported as unmapped, so operators can reconcile accounts
// before migrating instead of after.
func (r *Runner) Directory(ctx context.Context, cmd *cli.Command) error {
	cfg := r.loadConfig(cmd)

	dest, destCleanup, err := r.openDestination(ctx, cfg)
	if err != nil {
		return err
	}
	defer destCleanup()

	identity, err := migrate.BuildIdentityMap(ctx, dest)
	if err != nil {
		return err
	}

	r.writePlain("Mapped %d SLUGGER users by email\n", len(identity))

	if !cmd.Bool("check") {
		return nil
	}

	src, srcCleanup, err := r.buildSource(ctx, cfg, cmd.String("strategy"))
	if err != nil {
		return err
	}
	defer srcCleanup()

	rows, err := src.Fetch(ctx, "users")
	if err != nil {
		return err
	}

	var unresolved []string
	for _, row := range rows {
		email := migrate.NormalizeEmail(row.String("email"))
		if _, ok := identity.Resolve(email); !ok {
			if email == "" {
				email = "(no email)"
			}
			unresolved = append(unresolved, email)
		}
	}

	if len(unresolved) == 0 {
		r.writePlain("All %d source users resolve in the directory\n", len(rows))
		return nil
	}

	r.writePlainln("Source users with no directory entry (%d):", len(unresolved))
	for _, email := range unresolved {
		r.writePlain("  %s\n", email)
	}
	return nil
}
