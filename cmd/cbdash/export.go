package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kubechargeback/cbdash/internal/config"
	"github.com/kubechargeback/cbdash/internal/domain"
	"github.com/kubechargeback/cbdash/internal/logger"
	"github.com/kubechargeback/cbdash/internal/report"
)

func newExportCmd(v *viper.Viper, cfgFile *string) *cobra.Command {
	var groupBy string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the cost allocations for the window as CSV",
		Example: `  cbdash export > allocations.csv
  cbdash export --group-by app --window 168h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, *cfgFile)
			if err != nil {
				return fail(err)
			}
			log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "stderr")
			if err != nil {
				return fail(err)
			}
			defer func() { _ = log.Sync() }()

			repo, err := newRepo(cfg, log)
			if err != nil {
				return fail(err)
			}
			ctx := cmd.Context()
			if cfg.RequestTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.RequestTimeout)
				defer cancel()
			}

			w := domain.Trailing(time.Now(), cfg.Window)
			allocs, err := repo.Allocations(ctx, w, domain.GroupBy(groupBy))
			if err != nil {
				// exports never fall back to the demo dataset
				log.Error("Allocation export failed", zap.Error(err))
				return fail(err)
			}
			return report.WriteAllocationsCSV(cmd.OutOrStdout(), allocs)
		},
	}
	cmd.Flags().StringVar(&groupBy, "group-by", string(domain.GroupByNamespace), "Grouping dimension (namespace, app or team).")
	return cmd
}
