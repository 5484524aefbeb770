package main

import (
	root "aviators"
	"aviators/internal/config"
	"aviators/pkg/logger"
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/riverqueue/river/riverdriver/riverdatabasesql"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const migrationsDir = "migrations"

// migrateCommand constructs the 'migrate' command. Without a subcommand it
// applies every pending goose and River migration.
func migrateCommand(cfg *config.Config) *cobra.Command {
	var to int64

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrates database to the latest version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrations(cmd.Context(), cfg, func(ctx context.Context, db *sql.DB) error {
				if to > 0 {
					if err := goose.UpToContext(ctx, db, migrationsDir, to); err != nil {
						return fmt.Errorf("could not migrate pgsql to %d: %w", to, err)
					}
				} else if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
					return fmt.Errorf("could not migrate pgsql: %w", err)
				}

				return migrateRiver(ctx, db)
			})
		},
	}
	cmd.Flags().Int64Var(&to, "to", 0, "Stop at this schema version instead of the latest")

	cmd.AddCommand(migrateStatusCommand(cfg), migrateDownCommand(cfg))

	return cmd
}

func migrateStatusCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Prints the state of every schema migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrations(cmd.Context(), cfg, func(ctx context.Context, db *sql.DB) error {
				return goose.StatusContext(ctx, db, migrationsDir)
			})
		},
	}
}

func migrateDownCommand(cfg *config.Config) *cobra.Command {
	var to int64

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rolls back schema migrations, one by default",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrations(cmd.Context(), cfg, func(ctx context.Context, db *sql.DB) error {
				if cmd.Flags().Changed("to") {
					return goose.DownToContext(ctx, db, migrationsDir, to)
				}

				return goose.DownContext(ctx, db, migrationsDir)
			})
		},
	}
	// River tables are left alone; they are owned by the queue, not the schema.
	cmd.Flags().Int64Var(&to, "to", 0, "Roll back down to this schema version")

	return cmd
}

// withMigrations connects to postgres and points goose at the embedded
// migrations before running fn.
func withMigrations(ctx context.Context, cfg *config.Config, fn func(context.Context, *sql.DB) error) error {
	strg, closeStrg := getPostgres(ctx, cfg)
	defer closeStrg()

	goose.SetBaseFS(root.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("could not set goose dialect to postgres: %w", err)
	}

	db, ok := strg.DB.(*sql.DB)
	if !ok {
		return fmt.Errorf("unexpected database handle %T", strg.DB)
	}

	return fn(ctx, db)
}

// migrateRiver brings the River job tables to the latest version.
func migrateRiver(ctx context.Context, db *sql.DB) error {
	migrator, err := rivermigrate.New(riverdatabasesql.New(db), nil)
	if err != nil {
		return fmt.Errorf("could not create river queue migrator: %w", err)
	}

	all := migrator.AllVersions()
	latest := all[len(all)-1].Version
	current := 0
	existing, err := migrator.ExistingVersions(ctx)
	if err != nil {
		return fmt.Errorf("could not get existing river queue migrations: %w", err)
	}
	if len(existing) > 0 {
		current = existing[len(existing)-1].Version
	}
	if latest <= current {
		logger.Debug(ctx, "river queue schema is up to date", zap.Int("version", current))

		return nil
	}

	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{TargetVersion: latest})
	if err != nil {
		return fmt.Errorf("could not migrate river queue database: %w", err)
	}
	for _, v := range res.Versions {
		logger.Info(ctx, "applied river queue migration", zap.Int("version", v.Version))
	}

	return nil
}
