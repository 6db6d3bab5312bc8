package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mixradio/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", r.configPath)

	r.writePlain("✓ Config written to %s\n", r.configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set client.client_id (or %s) to your application id\n", shared.EnvClientID)
	r.writePlain("2. Run 'mixradio setup database'\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations.
//
// --status lists migrations without applying them and --rollback undoes the latest one.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path := r.config.Database.Path
	r.logger.Info("initializing database", "path", path)

	db, err := shared.NewDatabase(path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	switch {
	case cmd.Bool("rollback"):
		r.logger.Info("rolling back latest migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
	case cmd.Bool("status"):
	default:
		r.logger.Info("running database migrations")
		if err := shared.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	statuses, err := shared.MigrationStatuses(db)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	return r.emit(cmd, statuses, func() {
		r.writePlain("Database: %s\n\n", path)
		for _, s := range statuses {
			mark := "✗"
			if s.Applied {
				mark = "✓"
			}
			r.writePlain("%s %04d %s\n", mark, s.Version, s.Name)
		}
	})
}
