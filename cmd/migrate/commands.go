package main

import (
	"errors"
	"fmt"

	"github.com/Rrens/storefront/internal/config"
	"github.com/Rrens/storefront/internal/logger"
	"github.com/Rrens/storefront/internal/repository/postgres"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// newRootCmd builds the migrate command tree. Config and logging are set up
// once argument validation has passed.
func newRootCmd() *cobra.Command {
	var dsn string

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the database schema",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if _, err := logger.Setup(config.LoggingConfig{Level: cfg.Logging.Level, Format: "console"}); err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}

			dsn = cfg.Database.DSN()
			log.Info().Str("host", cfg.Database.Host).Int("port", cfg.Database.Port).Msg("connecting to database")
			return nil
		},
	}

	root.AddCommand(newUpCmd(&dsn), newDownCmd(&dsn), newVersionCmd(&dsn))
	return root
}

func newUpCmd(dsn *string) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := postgres.RunMigrations(*dsn); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			log.Info().Msg("migrations applied")
			return nil
		},
	}
}

func newDownCmd(dsn *string) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected arguments: %v", args)
			}
			if steps < 1 {
				return errors.New("--steps must be at least 1")
			}
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := postgres.RollbackMigrations(*dsn, steps); err != nil {
				return fmt.Errorf("rollback failed: %w", err)
			}
			log.Info().Int("steps", steps).Msg("rolled back migrations")
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	return cmd
}

func newVersionCmd(dsn *string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			version, dirty, err := postgres.MigrationVersion(*dsn)
			if err != nil {
				return fmt.Errorf("failed to read schema version: %w", err)
			}
			log.Info().Uint("version", version).Bool("dirty", dirty).Msg("schema version")
			return nil
		},
	}
}
