package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kubechargeback/cbdash/internal/app"
	"github.com/kubechargeback/cbdash/internal/config"
	"github.com/kubechargeback/cbdash/internal/domain"
	"github.com/kubechargeback/cbdash/internal/infrastructure/api"
	"github.com/kubechargeback/cbdash/internal/infrastructure/kube"
	"github.com/kubechargeback/cbdash/internal/infrastructure/mock"
	"github.com/kubechargeback/cbdash/internal/loader"
	"github.com/kubechargeback/cbdash/internal/logger"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "cbdash",
		Short: "Terminal dashboard for KubeChargeback cost and compliance reports",
		Long: `cbdash shows cost allocation, resource compliance and budget alerts
from the KubeChargeback reporting API. When the API is unreachable it shows a
clearly labelled demo dataset instead.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return fail(err)
			}
			// stderr belongs to the alt screen while the TUI runs
			log, err := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
			if err != nil {
				return fail(err)
			}
			defer func() { _ = log.Sync() }()
			return runTUI(cfg, log)
		},
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (yaml, json or toml)")
	if err := config.SetupFlags(root, v); err != nil {
		panic(err)
	}

	root.AddCommand(newSnapshotCmd(v, &cfgFile), newExportCmd(v, &cfgFile), newDemoServerCmd(v, &cfgFile))
	return root
}

func runTUI(cfg *config.Config, log *zap.Logger) error {
	l, err := newLoader(cfg, log)
	if err != nil {
		log.Error("Failed to set up report source", zap.Error(err))
		return fail(err)
	}
	log.Info("Starting dashboard",
		zap.String("version", version),
		zap.Bool("mock", cfg.Mock),
		zap.Bool("kubeProxy", cfg.KubeProxy),
		zap.Duration("window", cfg.Window))

	m := app.New(l, cfg.RefreshInterval, log)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Error("TUI exited with error", zap.Error(err))
		return fail(err)
	}
	return nil
}

// newRepo picks the report source: the built-in dataset, the API through
// the kube service proxy, or the API at cfg.APIURL.
func newRepo(cfg *config.Config, log *zap.Logger) (domain.ReportsRepo, error) {
	if cfg.Mock {
		return mock.New(), nil
	}
	opt := api.Option{BaseURL: cfg.APIURL, Timeout: cfg.RequestTimeout}
	if cfg.KubeProxy {
		base, hc, err := kube.ServiceProxy(cfg.Kubeconfig, cfg.KubeContext, kube.Target{
			Namespace: cfg.KubeNamespace,
			Service:   cfg.KubeService,
			Port:      cfg.KubeServicePort,
		})
		if err != nil {
			return nil, err
		}
		opt.BaseURL, opt.HTTPClient = base, hc
		log.Info("Using kube service proxy", zap.String("baseURL", base))
	}
	return api.New(opt, log.Named("api")), nil
}

func newLoader(cfg *config.Config, log *zap.Logger) (*loader.Loader, error) {
	repo, err := newRepo(cfg, log)
	if err != nil {
		return nil, err
	}
	opts := loader.Options{
		Window:      cfg.Window,
		AlertsLimit: cfg.AlertsLimit,
		TopLimit:    cfg.TopAppsLimit,
		Timeout:     cfg.RequestTimeout,
		Demo:        cfg.Mock,
	}
	if cfg.DemoFallback && !cfg.Mock {
		opts.Fallback = mock.New()
	}
	return loader.New(repo, opts, log.Named("loader")), nil
}

func fail(err error) error {
	fmt.Fprintln(os.Stderr, "cbdash:", err)
	return err
}
