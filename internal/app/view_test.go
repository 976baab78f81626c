package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kubechargeback/cbdash/internal/domain"
	"github.com/kubechargeback/cbdash/internal/infrastructure/mock"
	"github.com/kubechargeback/cbdash/internal/loader"
	"github.com/kubechargeback/cbdash/internal/report"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func demoData() domain.Dataset {
	w := domain.Trailing(testNow, 24*time.Hour)
	return mock.NewAt(testNow).Dataset(context.Background(), w, 10, 5)
}

func frameFor(res loader.Result, sel report.Selection) Frame {
	return Frame{Result: res, Metrics: report.Derive(res.Data), Sel: sel, Focus: -1, Width: 160}
}

func TestRenderLive(t *testing.T) {
	out := Render(frameFor(loader.Result{Data: demoData(), Source: loader.SourceLive}, report.Selection{}))

	assert.Contains(t, out, "LIVE")
	assert.NotContains(t, out, "DEMO DATA")
	assert.Contains(t, out, "15.30")
	assert.Contains(t, out, "71")
	assert.Contains(t, out, "Cost by Namespace")
	assert.Contains(t, out, "kube-system")
	assert.Contains(t, out, "Compliance Summary")
	assert.Contains(t, out, "Healthy Workloads")
	assert.Contains(t, out, "Budget Alerts (3)")
	assert.NotContains(t, out, "Top offenders")
}

func TestRenderDemoIsLabelled(t *testing.T) {
	res := loader.Result{Data: demoData(), Source: loader.SourceDemo, Err: errors.New("connection refused")}
	out := Render(frameFor(res, report.Selection{}))

	assert.Contains(t, out, "DEMO DATA")
	assert.Contains(t, out, "API unavailable")
	assert.Contains(t, out, "connection refused")
	assert.NotContains(t, out, "LIVE")
}

func TestRenderNoData(t *testing.T) {
	out := Render(frameFor(loader.Result{Err: errors.New("no route to host")}, report.Selection{}))

	assert.Contains(t, out, "Report data unavailable")
	assert.Contains(t, out, "no route to host")
	assert.NotContains(t, out, "Budget Alerts")
}

func TestRenderComplianceFilter(t *testing.T) {
	res := loader.Result{Data: demoData(), Source: loader.SourceLive}
	sel := report.Reduce(report.Selection{}, report.SelectCompliance{Status: domain.StatusMissingLimits})
	out := Render(frameFor(res, sel))

	assert.Contains(t, out, "Missing Limits Workloads")
	assert.Contains(t, out, "4 workloads")
	assert.Contains(t, out, "kube-proxy")
	assert.Contains(t, out, "local-path-provisioner")
	assert.NotContains(t, out, "chargeback-ui")
	assert.Contains(t, out, "[c] clear filter")
}

func TestRenderNamespaceFilter(t *testing.T) {
	res := loader.Result{Data: demoData(), Source: loader.SourceLive}
	sel := report.Reduce(report.Selection{}, report.SelectNamespace{Namespace: "default"})
	out := Render(frameFor(res, sel))

	assert.Contains(t, out, "Workloads in default")
	assert.Contains(t, out, "7 workloads")
	assert.Contains(t, out, "▶")

	sel = report.Reduce(report.Selection{}, report.SelectNamespace{Namespace: "nowhere"})
	assert.Contains(t, Render(frameFor(res, sel)), "No workloads match")
}

func TestRenderChartModes(t *testing.T) {
	res := loader.Result{Data: demoData(), Source: loader.SourceLive}

	out := Render(frameFor(res, report.Selection{ShowTopApps: true}))
	assert.Contains(t, out, "Top Apps by Cost")
	assert.Contains(t, out, "prometheus")

	out = Render(frameFor(res, report.Selection{ShowCostTable: true}))
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "4Gi")
	assert.Contains(t, out, "500m")

	empty := res
	empty.Data.Allocations = nil
	assert.Contains(t, Render(frameFor(empty, report.Selection{})), "No allocation data available")
}

func TestRenderExpandedAlert(t *testing.T) {
	d := demoData()
	d.Alerts = append(d.Alerts, domain.Alert{
		ID:         "bad",
		Timestamp:  domain.Timestamp{Time: testNow},
		Severity:   domain.SeverityWarning,
		BudgetName: "broken-budget",
		Message:    "payload did not validate",
		DetailsErr: errors.New("decode alert details"),
	})
	res := loader.Result{Data: d, Source: loader.SourceLive}

	out := Render(frameFor(res, report.Selection{ExpandedAlert: "demo-alert-3"}))
	assert.Contains(t, out, "▾")
	assert.Contains(t, out, "Top offenders")
	assert.Contains(t, out, "130%")

	out = Render(frameFor(res, report.Selection{ExpandedAlert: "bad"}))
	assert.Contains(t, out, "broken-budget")
	assert.NotContains(t, out, "Top offenders")
	assert.NotContains(t, out, "CPU ")
}

func TestRenderCountMismatch(t *testing.T) {
	d := demoData()
	d.Compliance.Items = d.Compliance.Items[:5]
	out := Render(frameFor(loader.Result{Data: d, Source: loader.SourceLive}, report.Selection{}))
	assert.Contains(t, out, "summary counts 21 workloads, report lists 5")
}

func TestRenderNarrowStacks(t *testing.T) {
	f := frameFor(loader.Result{Data: demoData(), Source: loader.SourceLive}, report.Selection{})
	f.Width = 80
	out := Render(f)

	chart := strings.Index(out, "Cost by Namespace")
	summary := strings.Index(out, "Compliance Summary")
	assert.True(t, chart >= 0 && summary > chart)
	assert.Less(t, strings.Count(out[:summary], "\n"), strings.Count(out, "\n"))
	// stacked panels do not share a line
	for _, line := range strings.Split(out, "\n") {
		assert.False(t, strings.Contains(line, "Cost by Namespace") && strings.Contains(line, "Compliance Summary"))
	}
}

func TestDetailHeightMatchesRender(t *testing.T) {
	for _, a := range demoData().Alerts {
		if a.Details == nil {
			continue
		}
		lines := strings.Count(renderDetails(*a.Details, 120), "\n") + 1
		assert.Equal(t, lines, detailHeight(*a.Details), a.ID)
	}
}
