package main

import (
	"github.com/spf13/cobra"

	"github.com/mrdaeback/voice-order/internal/repo"
	logx "github.com/mrdaeback/voice-order/pkg/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and seed the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadDatabaseConfig()
			if err != nil {
				return err
			}
			pool, err := cfg.New(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := repo.Migrate(cmd.Context(), pool)
			if err != nil {
				return err
			}
			logx.Info().Int("applied", n).Msg("migrations complete")
			return nil
		},
	}
}
