package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert reference data and demo accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck
		if cfg.Postgres.DSN == "" {
			return errors.New("POSTGRES_DSN is required; the in-memory store is seeded by serve")
		}

		ctx := context.Background()
		app, err := newApplication(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		report, err := app.seeder().Seed(ctx)
		if err != nil {
			return err
		}
		cmd.Printf("seeded %d department(s), %d room(s), %d categories, %d user(s)\n",
			report.Departments, report.Rooms, report.Categories, report.Users)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
