// cmd/api/migrate.go
package main

import (
	"fmt"

	"leaddist-service/internal/db"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func migrateCommands(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply or roll back database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := db.Migrate(c.cfg.DatabaseURL, migrate.Up, 0)
			if err != nil {
				return fmt.Errorf("error migrating up: %w", err)
			}
			c.logger.Info("applied migrations", zap.Int("count", n))
			return nil
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := db.Migrate(c.cfg.DatabaseURL, migrate.Down, steps)
			if err != nil {
				return fmt.Errorf("error migrating down: %w", err)
			}
			c.logger.Info("rolled back migrations", zap.Int("count", n))
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back (0 for all)")
	cmd.AddCommand(down)

	return cmd
}
