package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/facilitydesk/helpdesk/internal/persistence"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck
		return migrateUp(cfg.Postgres.DSN, logger)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations, one step unless told otherwise",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("steps must be a positive integer, got %q", args[0])
			}
			steps = n
		}
		return withMigrator(func(m *persistence.Migrator) error {
			return m.Down(steps)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *persistence.Migrator) error {
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			cmd.Printf("version %d (dirty: %t)\n", version, dirty)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
}

func withMigrator(fn func(m *persistence.Migrator) error) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	if cfg.Postgres.DSN == "" {
		return errors.New("POSTGRES_DSN is required")
	}

	m, err := persistence.NewMigrator(cfg.Postgres.DSN, logger)
	if err != nil {
		return fmt.Errorf("init migrator failed: %w", err)
	}
	defer m.Close() //nolint:errcheck
	return fn(m)
}

func migrateUp(dsn string, logger *zap.Logger) error {
	if dsn == "" {
		return errors.New("POSTGRES_DSN is required")
	}
	m, err := persistence.NewMigrator(dsn, logger)
	if err != nil {
		return fmt.Errorf("init migrator failed: %w", err)
	}
	defer m.Close() //nolint:errcheck
	if err := m.Up(); err != nil {
		return fmt.Errorf("migrate up failed: %w", err)
	}
	return nil
}
