package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kubechargeback/cbdash/internal/config"
	"github.com/kubechargeback/cbdash/internal/demoserver"
	"github.com/kubechargeback/cbdash/internal/infrastructure/mock"
	"github.com/kubechargeback/cbdash/internal/logger"
)

func newDemoServerCmd(v *viper.Viper, cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo-server",
		Short: "Serve the demo dataset over the reporting API routes",
		Args:  cobra.NoArgs,
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

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := demoserver.New(cfg.DemoAddr, mock.New(), log.Named("demo-server"), cfg.LogLevel == "debug")
			log.Info("Serving demo reports", zap.Strings("routes", demoserver.Routes()))
			if err := srv.Start(ctx); err != nil {
				log.Error("Demo server stopped with error", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().String("demo-addr", ":8080", "Listen address for the demo API server.")
	if err := v.BindPFlag("demo-addr", cmd.Flags().Lookup("demo-addr")); err != nil {
		panic(err)
	}
	return cmd
}
