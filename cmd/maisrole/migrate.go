package main

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate command with up and down subcommands.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all up migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := loadBase()
			return runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger, false, 0)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (all unless --steps is set)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := loadBase()
			return runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger, true, steps)
		},
	}
	down.Flags().IntVar(&steps, "steps", 0, "number of migrations to roll back")
	cmd.AddCommand(down)

	return cmd
}

func newMigrator(db *sql.DB, migrationsDir string) (*migrate.Migrate, error) {
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return nil, oops.Code("MIGRATE_INIT_FAILED").Wrap(err)
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return nil, oops.Code("MIGRATE_INIT_FAILED").With("dir", migrationsDir).Wrap(err)
	}
	return m, nil
}

// runMigrations opens a database/sql handle through the pgx stdlib driver
// and applies migrations up, or down by steps (0 means all).
func runMigrations(dsn, migrationsDir string, logger *logrus.Logger, down bool, steps int) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return oops.Code("MIGRATE_OPEN_FAILED").Wrap(err)
	}
	defer func() { _ = db.Close() }()

	m, err := newMigrator(db, migrationsDir)
	if err != nil {
		return err
	}

	switch {
	case !down:
		logger.Info("running migrations up")
		err = m.Up()
	case steps > 0:
		logger.WithField("steps", steps).Info("rolling back migrations")
		err = m.Steps(-steps)
	default:
		logger.Info("rolling back all migrations")
		err = m.Down()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	if err != nil {
		return oops.Code("MIGRATE_FAILED").With("down", down).Wrap(err)
	}
	if v, dirty, verr := m.Version(); verr == nil {
		logger.WithFields(logrus.Fields{"version": v, "dirty": dirty}).Info("migrations applied")
	}
	return nil
}
