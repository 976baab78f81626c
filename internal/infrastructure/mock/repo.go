package mock

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/kubechargeback/cbdash/internal/domain"
	"github.com/kubechargeback/cbdash/internal/report"
)

// Repo serves a fixed demo dataset. It backs --mock, the demo server and the
// loader's fallback when the reporting API is unreachable.
type Repo struct {
	now func() time.Time
}

func New() *Repo {
	return &Repo{now: time.Now}
}

// NewAt pins alert timestamps to a fixed clock.
func NewAt(now time.Time) *Repo {
	return &Repo{now: func() time.Time { return now }}
}

func (r *Repo) Allocations(ctx context.Context, w domain.Window, groupBy domain.GroupBy) ([]domain.Allocation, error) {
	switch groupBy {
	case domain.GroupByApp:
		return r.TopApps(ctx, w, len(topApps))
	case domain.GroupByNamespace, "":
		return clone(namespaceAllocations), nil
	}
	return nil, errors.Errorf("mock: unsupported groupBy %q", groupBy)
}

func (r *Repo) Compliance(ctx context.Context, w domain.Window) (domain.ComplianceReport, error) {
	items := append([]domain.ComplianceItem(nil), workloads...)
	var s domain.ComplianceSummary
	for _, it := range items {
		switch it.Status {
		case domain.StatusOK:
			s.OK++
		case domain.StatusMissingRequests:
			s.MissingRequests++
		case domain.StatusMissingLimits:
			s.MissingLimits++
		case domain.StatusBothMissing:
			s.BothMissing++
		}
	}
	return domain.ComplianceReport{Summary: s, Items: items}, nil
}

func (r *Repo) Alerts(ctx context.Context, limit int) ([]domain.Alert, error) {
	now := r.now().UTC().Truncate(time.Second)
	out := []domain.Alert{
		{
			ID:         "demo-alert-3",
			Timestamp:  domain.Timestamp{Time: now.Add(-12 * time.Minute)},
			Severity:   domain.SeverityCritical,
			BudgetName: "platform-team",
			Message:    "Budget platform-team exceeded: cpu 2600m of 2000m",
			RawDetails: `{"currentCpuMcpu":2600,"currentMemMib":4736,"limitCpuMcpu":2000,"limitMemMib":6144,` +
				`"topOffenders":[{"app":"prometheus","cpuMcpu":1200,"memMib":2048,"totalCostUnits":6.1},` +
				`{"app":"coredns","cpuMcpu":600,"memMib":512,"totalCostUnits":2.9},` +
				`{"app":"ingress-nginx","cpuMcpu":450,"memMib":768,"totalCostUnits":2.2}]}`,
		},
		{
			ID:         "demo-alert-2",
			Timestamp:  domain.Timestamp{Time: now.Add(-95 * time.Minute)},
			Severity:   domain.SeverityWarning,
			BudgetName: "chargeback-ns",
			Message:    "Budget chargeback-ns at 85% of memory limit",
			RawDetails: `{"currentCpuMcpu":500,"currentMemMib":870,"limitCpuMcpu":1000,"limitMemMib":1024,` +
				`"topOffenders":[{"app":"chargeback-api","cpuMcpu":300,"memMib":512,"totalCostUnits":1.4},` +
				`{"app":"chargeback-collector","cpuMcpu":200,"memMib":358,"totalCostUnits":0.9}]}`,
		},
		{
			ID:         "demo-alert-1",
			Timestamp:  domain.Timestamp{Time: now.Add(-6 * time.Hour)},
			Severity:   domain.SeverityWarning,
			BudgetName: "demo-budget",
			Message:    "System is active and monitoring.",
			RawDetails: "{}",
		},
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	report.AttachDetails(out)
	return out, nil
}

func (r *Repo) TopApps(ctx context.Context, w domain.Window, limit int) ([]domain.Allocation, error) {
	out := clone(topApps)
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// Dataset returns the whole demo dataset for w.
func (r *Repo) Dataset(ctx context.Context, w domain.Window, alertsLimit, topLimit int) domain.Dataset {
	allocs, _ := r.Allocations(ctx, w, domain.GroupByNamespace)
	comp, _ := r.Compliance(ctx, w)
	alerts, _ := r.Alerts(ctx, alertsLimit)
	top, _ := r.TopApps(ctx, w, topLimit)
	return domain.Dataset{Allocations: allocs, Compliance: comp, Alerts: alerts, TopApps: top, Window: w}
}

var namespaceAllocations = []domain.Allocation{
	{GroupKey: "kube-system", TotalCostUnits: 12.5, CPUMcpu: 2000, MemMiB: 4096},
	{GroupKey: "kubechargeback", TotalCostUnits: 2.3, CPUMcpu: 500, MemMiB: 512},
	{GroupKey: "default", TotalCostUnits: 0.5, CPUMcpu: 100, MemMiB: 128},
}

// sorted by cost, like the backend's top-apps query
var topApps = []domain.Allocation{
	{GroupKey: "prometheus", TotalCostUnits: 6.1, CPUMcpu: 1200, MemMiB: 2048},
	{GroupKey: "coredns", TotalCostUnits: 2.9, CPUMcpu: 600, MemMiB: 512},
	{GroupKey: "ingress-nginx", TotalCostUnits: 2.2, CPUMcpu: 450, MemMiB: 768},
	{GroupKey: "chargeback-api", TotalCostUnits: 1.4, CPUMcpu: 300, MemMiB: 256},
	{GroupKey: "chargeback-collector", TotalCostUnits: 0.9, CPUMcpu: 200, MemMiB: 256},
	{GroupKey: "echo-server", TotalCostUnits: 0.5, CPUMcpu: 100, MemMiB: 128},
}

// 15 ok, 2 missing requests, 3 missing limits, 1 both missing
var workloads = []domain.ComplianceItem{
	{Namespace: "kube-system", Kind: "Deployment", Name: "coredns", Status: domain.StatusOK},
	{Namespace: "kube-system", Kind: "Deployment", Name: "metrics-server", Status: domain.StatusOK},
	{Namespace: "kube-system", Kind: "DaemonSet", Name: "kube-proxy", Status: domain.StatusMissingLimits},
	{Namespace: "kube-system", Kind: "DaemonSet", Name: "kindnet", Status: domain.StatusOK},
	{Namespace: "kube-system", Kind: "StatefulSet", Name: "prometheus", Status: domain.StatusOK},
	{Namespace: "kube-system", Kind: "Deployment", Name: "ingress-nginx", Status: domain.StatusMissingLimits},
	{Namespace: "kube-system", Kind: "Deployment", Name: "local-path-provisioner", Status: domain.StatusBothMissing},
	{Namespace: "kube-system", Kind: "Deployment", Name: "cert-manager", Status: domain.StatusOK},
	{Namespace: "kube-system", Kind: "Deployment", Name: "cert-manager-webhook", Status: domain.StatusOK},
	{Namespace: "kube-system", Kind: "DaemonSet", Name: "node-exporter", Status: domain.StatusOK},
	{Namespace: "kubechargeback", Kind: "Deployment", Name: "chargeback-api", Status: domain.StatusOK},
	{Namespace: "kubechargeback", Kind: "CronJob", Name: "chargeback-collector", Status: domain.StatusOK},
	{Namespace: "kubechargeback", Kind: "Deployment", Name: "chargeback-ui", Status: domain.StatusMissingRequests},
	{Namespace: "kubechargeback", Kind: "StatefulSet", Name: "chargeback-db", Status: domain.StatusOK},
	{Namespace: "default", Kind: "Deployment", Name: "echo-server", Status: domain.StatusOK},
	{Namespace: "default", Kind: "Deployment", Name: "nginx", Status: domain.StatusMissingRequests},
	{Namespace: "default", Kind: "Job", Name: "db-migrate", Status: domain.StatusOK},
	{Namespace: "default", Kind: "Deployment", Name: "redis", Status: domain.StatusMissingLimits},
	{Namespace: "default", Kind: "Deployment", Name: "worker", Status: domain.StatusOK},
	{Namespace: "default", Kind: "StatefulSet", Name: "kafka", Status: domain.StatusOK},
	{Namespace: "default", Kind: "Deployment", Name: "cart", Status: domain.StatusOK},
}

func clone(in []domain.Allocation) []domain.Allocation {
	return append([]domain.Allocation(nil), in...)
}
