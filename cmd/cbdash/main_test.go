package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubechargeback/cbdash/internal/domain"
	"github.com/kubechargeback/cbdash/internal/report"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSnapshotMock(t *testing.T) {
	out, err := runCmd(t, "snapshot", "--mock", "--log-level", "error", "--width", "140")
	require.NoError(t, err)

	assert.Contains(t, out, "DEMO DATA")
	assert.NotContains(t, out, "API unavailable")
	assert.Contains(t, out, "15.30")
	assert.Contains(t, out, "Compliance Summary")
	assert.Contains(t, out, "Budget Alerts (3)")
}

func TestSnapshotFilters(t *testing.T) {
	out, err := runCmd(t, "snapshot", "--mock", "--log-level", "error",
		"--status", "missing-requests", "--expand", "demo-alert-3")
	require.NoError(t, err)

	assert.Contains(t, out, "Missing Requests Workloads")
	assert.Contains(t, out, "3 workloads")
	assert.Contains(t, out, "Top offenders")
}

func TestSnapshotRejectsConflictingLenses(t *testing.T) {
	_, err := runCmd(t, "snapshot", "--mock", "--namespace", "default", "--all")
	assert.Error(t, err)

	_, err = runCmd(t, "snapshot", "--mock", "--status", "sideways")
	assert.Error(t, err)
}

func TestSnapshotFallsBackToLabelledDemo(t *testing.T) {
	out, err := runCmd(t, "snapshot", "--log-level", "error",
		"--api-url", "http://127.0.0.1:1", "--request-timeout", "2s")
	require.NoError(t, err)
	assert.Contains(t, out, "DEMO DATA")
	assert.Contains(t, out, "API unavailable")
	assert.Contains(t, out, "15.30")
}

func TestSnapshotWithoutFallbackFails(t *testing.T) {
	out, err := runCmd(t, "snapshot", "--log-level", "error",
		"--api-url", "http://127.0.0.1:1", "--demo-fallback=false", "--request-timeout", "2s")
	assert.Error(t, err)
	assert.Contains(t, out, "Report data unavailable")
}

func TestExportMock(t *testing.T) {
	out, err := runCmd(t, "export", "--mock", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t,
		"Group Key,CPU (mCPU),Memory (MiB),Total Cost\n"+
			"kube-system,2000,4096,12.5000\n"+
			"kubechargeback,500,512,2.3000\n"+
			"default,100,128,0.5000\n",
		out)

	out, err = runCmd(t, "export", "--mock", "--log-level", "error", "--group-by", "app")
	require.NoError(t, err)
	assert.Contains(t, out, "prometheus,1200,2048,6.1000")

	_, err = runCmd(t, "export", "--mock", "--log-level", "error", "--group-by", "team")
	assert.Error(t, err)
}

func TestSnapshotSelection(t *testing.T) {
	sel, err := snapshotFlags{namespace: "kube-system", topApps: true, table: true}.selection()
	require.NoError(t, err)
	assert.Equal(t, "kube-system", sel.NamespaceFilter)
	assert.False(t, sel.ShowTopApps, "namespace drill-down returns to the namespace chart")
	assert.True(t, sel.ShowCostTable)

	sel, err = snapshotFlags{all: true, expand: "a1"}.selection()
	require.NoError(t, err)
	assert.Equal(t, report.LensAllWorkloads, sel.Lens())
	assert.Equal(t, "a1", sel.ExpandedAlert)
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]domain.ComplianceStatus{
		"ok":               domain.StatusOK,
		"MISSING_LIMITS":   domain.StatusMissingLimits,
		"missing-requests": domain.StatusMissingRequests,
		"both_missing":     domain.StatusBothMissing,
	} {
		got, err := parseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := parseStatus("MISSING")
	assert.Error(t, err)
}
