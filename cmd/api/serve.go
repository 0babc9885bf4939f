// cmd/api/serve.go
package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"leaddist-service/internal/app"
	"leaddist-service/internal/db"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCommand(c *cli) *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if !skipMigrate {
				n, err := db.MigrateUp(c.cfg.DatabaseURL)
				if err != nil {
					return fmt.Errorf("failed to migrate database: %w", err)
				}
				c.logger.Info("migrations applied", zap.Int("count", n))
			}

			srv := app.NewServer(c.cfg, c.logger)
			if err := srv.Connect(ctx); err != nil {
				return err
			}
			defer srv.Close()

			if err := srv.Wire(); err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply pending migrations on start")
	return cmd
}

// background is used by one-shot commands that have no signal handling.
func background(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
