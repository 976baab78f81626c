package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kubechargeback/cbdash/internal/app"
	"github.com/kubechargeback/cbdash/internal/config"
	"github.com/kubechargeback/cbdash/internal/domain"
	"github.com/kubechargeback/cbdash/internal/loader"
	"github.com/kubechargeback/cbdash/internal/logger"
	"github.com/kubechargeback/cbdash/internal/report"
)

type snapshotFlags struct {
	namespace string
	status    string
	all       bool
	topApps   bool
	table     bool
	expand    string
	width     int
}

func newSnapshotCmd(v *viper.Viper, cfgFile *string) *cobra.Command {
	var sf snapshotFlags
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Load the reports once and print the rendered dashboard",
		Example: `  cbdash snapshot --mock
  cbdash snapshot --status MISSING_LIMITS --width 140
  cbdash snapshot --namespace kube-system --table --expand demo-alert-3`,
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

			sel, err := sf.selection()
			if err != nil {
				return fail(err)
			}
			l, err := newLoader(cfg, log)
			if err != nil {
				return fail(err)
			}

			res := l.Run(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), app.Render(app.Frame{
				Result:  res,
				Metrics: report.Derive(res.Data),
				Sel:     sel,
				Focus:   -1,
				Width:   sf.width,
			}))

			switch res.Source {
			case loader.SourceNone:
				return fail(res.Err)
			case loader.SourceDemo:
				log.Warn("Rendered demo dataset", zap.Error(res.Err))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&sf.namespace, "namespace", "", "Filter workloads by namespace.")
	f.StringVar(&sf.status, "status", "", "Filter workloads by compliance status (OK, MISSING_REQUESTS, MISSING_LIMITS, BOTH_MISSING).")
	f.BoolVar(&sf.all, "all", false, "List all workloads.")
	f.BoolVar(&sf.topApps, "top-apps", false, "Chart the top apps instead of namespaces.")
	f.BoolVar(&sf.table, "table", false, "Show the cost table instead of the share chart.")
	f.StringVar(&sf.expand, "expand", "", "Alert ID to expand.")
	f.IntVar(&sf.width, "width", 120, "Render width in columns.")
	cmd.MarkFlagsMutuallyExclusive("namespace", "status", "all")
	return cmd
}

// selection replays the flags through the reducer, the same path key presses
// take in the interactive view.
func (sf snapshotFlags) selection() (report.Selection, error) {
	var events []report.Event
	if sf.topApps {
		events = append(events, report.ToggleTopApps{})
	}
	if sf.table {
		events = append(events, report.ToggleCostTable{})
	}
	switch {
	case sf.status != "":
		st, err := parseStatus(sf.status)
		if err != nil {
			return report.Selection{}, err
		}
		events = append(events, report.SelectCompliance{Status: st})
	case sf.namespace != "":
		events = append(events, report.SelectNamespace{Namespace: sf.namespace})
	case sf.all:
		events = append(events, report.ToggleAllWorkloads{})
	}
	if sf.expand != "" {
		events = append(events, report.ToggleAlert{ID: sf.expand})
	}

	var sel report.Selection
	for _, ev := range events {
		sel = report.Reduce(sel, ev)
	}
	return sel, nil
}

func parseStatus(s string) (domain.ComplianceStatus, error) {
	st := domain.ComplianceStatus(strings.ToUpper(strings.ReplaceAll(s, "-", "_")))
	switch st {
	case domain.StatusOK, domain.StatusMissingRequests, domain.StatusMissingLimits, domain.StatusBothMissing:
		return st, nil
	}
	return "", errors.Errorf("unknown compliance status %q", s)
}
