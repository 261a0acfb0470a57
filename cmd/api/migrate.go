package main

import (
	"database/sql"
	"fmt"

	"storefront/internal/database"
	"storefront/internal/logger"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateFlags = map[string]cobraflags.Flag{
	envFileFlag: &cobraflags.StringFlag{
		Name:  envFileFlag,
		Value: "",
		Usage: "Additional env file loaded before the environment is read",
	},
}

func newMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate [up|down|status]",
		Short: "Manage database schema migrations",
		Long: `Manage the embedded goose migrations.

Available subcommands:
  up      - Apply all pending migrations
  down    - Roll back the most recently applied migration
  status  - Print the state of every migration`,
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: withDatabase(func(db *sql.DB, log *zap.Logger) error {
			if err := database.RunMigrations(db, log); err != nil {
				return err
			}
			return reportVersion(db, log)
		}),
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recently applied migration",
		RunE: withDatabase(func(db *sql.DB, log *zap.Logger) error {
			if err := database.RollbackMigration(db, log); err != nil {
				return err
			}
			return reportVersion(db, log)
		}),
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Print migration status",
		RunE: withDatabase(func(db *sql.DB, _ *zap.Logger) error {
			return database.GetMigrationStatus(db)
		}),
	}

	for _, cmd := range []*cobra.Command{upCmd, downCmd, statusCmd} {
		cobraflags.RegisterMap(cmd, migrateFlags)
		migrateCmd.AddCommand(cmd)
	}
	return migrateCmd
}

// withDatabase opens the configured database for the duration of a single
// migration command
func withDatabase(run func(db *sql.DB, log *zap.Logger) error) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig(migrateFlags)
		if err != nil {
			return err
		}

		log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer log.Sync()

		dbService, err := database.New(cfg.Database, log)
		if err != nil {
			return err
		}
		defer dbService.Close()

		return run(dbService.SQL(), log)
	}
}

func reportVersion(db *sql.DB, log *zap.Logger) error {
	version, err := database.CurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	log.Info("Database schema version", zap.Int64("version", version))
	return nil
}
