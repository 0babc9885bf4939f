// cmd/api/main.go
package main

import (
	"log"
	"os"

	"leaddist-service/internal/app"
	"leaddist-service/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries state shared by every subcommand.
type cli struct {
	cfg    config.AppConfig
	logger *zap.Logger
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[MAIN] No .env file found, relying on system env vars")
	}

	c := &cli{}
	root := &cobra.Command{
		Use:           "leaddist",
		Short:         "Lead upload and distribution service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.cfg = config.Load()
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			logger, err := app.NewLogger(c.cfg)
			if err != nil {
				return err
			}
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	serve := serveCommand(c)
	root.RunE = serve.RunE

	root.AddCommand(serve, migrateCommands(c), agentCommands(c))

	if err := root.Execute(); err != nil {
		log.Printf("[MAIN] %v", err)
		os.Exit(1)
	}
}
