// cmd/api/agents.go
package main

import (
	"fmt"

	"leaddist-service/internal/app"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func agentCommands(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "agent maintenance tasks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "recount",
		Short: "rebuild assigned record counters from the records table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := background(cmd)

			srv := app.NewServer(c.cfg, c.logger)
			if err := srv.Connect(ctx); err != nil {
				return err
			}
			defer srv.Close()

			corrections, err := srv.AgentService().Recount(ctx)
			if err != nil {
				return err
			}
			for _, corr := range corrections {
				fmt.Fprintf(cmd.OutOrStdout(), "agent %d (%s): %d -> %d\n", corr.AgentID, corr.Name, corr.Previous, corr.Actual)
			}
			c.logger.Info("recount finished", zap.Int("corrected", len(corrections)))
			return nil
		},
	})

	return cmd
}
