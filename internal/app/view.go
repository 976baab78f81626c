package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kubechargeback/cbdash/help"
	"github.com/kubechargeback/cbdash/internal/domain"
	"github.com/kubechargeback/cbdash/internal/loader"
	"github.com/kubechargeback/cbdash/internal/report"
	"github.com/kubechargeback/cbdash/internal/ui/styles"
	"github.com/kubechargeback/cbdash/internal/ui/widgets"
)

type Pane int

const (
	PaneChart Pane = iota
	PaneCompliance
	PaneAlerts
)

func (p Pane) next() Pane { return (p + 1) % 3 }

// Frame is everything the renderer needs. Render never mutates it.
type Frame struct {
	Result  loader.Result
	Metrics report.Metrics
	Sel     report.Selection
	Focus   Pane
	Cursor  int
	Width   int
}

// summaryOrder is the row order of the compliance summary.
var summaryOrder = []domain.ComplianceStatus{
	domain.StatusMissingRequests,
	domain.StatusMissingLimits,
	domain.StatusBothMissing,
	domain.StatusOK,
}

func chartRows(d domain.Dataset, s report.Selection) []domain.Allocation {
	if s.ShowTopApps {
		return d.TopApps
	}
	return d.Allocations
}

func workloadRows(d domain.Dataset, s report.Selection) ([]domain.ComplianceItem, bool) {
	return report.FilterItems(d.Compliance.Items, s)
}

// rowCount is the number of selectable rows in pane p.
func rowCount(f Frame, p Pane) int {
	switch p {
	case PaneChart:
		return len(chartRows(f.Result.Data, f.Sel))
	case PaneCompliance:
		if items, ok := workloadRows(f.Result.Data, f.Sel); ok {
			return len(items)
		}
		return len(summaryOrder)
	case PaneAlerts:
		return len(f.Result.Data.Alerts)
	}
	return 0
}

// Render draws the whole dashboard for f.
func Render(f Frame) string {
	top, alerts := layout(f)
	if alerts == "" {
		return top
	}
	return lipgloss.JoinVertical(lipgloss.Left, top, alerts)
}

// layout renders everything above the alerts panel, and the alerts panel.
func layout(f Frame) (string, string) {
	width := f.Width
	if width < 40 {
		width = 40
	}

	parts := []string{renderHeader(f, width)}
	if f.Result.Source == loader.SourceNone {
		parts = append(parts, styles.Box.Width(width-2).Render(
			styles.Danger.Render("Report data unavailable")+"\n"+
				styles.Faint.Render(help.ShortErr(f.Result.Err, width-8))+"\n"+
				styles.Faint.Render("[r] retry"),
		))
		return lipgloss.JoinVertical(lipgloss.Left, parts...), ""
	}

	parts = append(parts, renderCards(f, width))

	left, right, stacked := panelWidths(width)
	chart := panel(f, PaneChart, left, renderChart(f, left-4))
	comp := panel(f, PaneCompliance, right, renderCompliance(f, right-4))
	if stacked {
		parts = append(parts, chart, comp)
	} else {
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top, chart, comp))
	}
	top := lipgloss.JoinVertical(lipgloss.Left, parts...)
	return top, panel(f, PaneAlerts, width, renderAlerts(f, width-4))
}

func panel(f Frame, p Pane, width int, body string) string {
	st := styles.Box
	if f.Focus == p {
		st = styles.Focused
	}
	return st.Width(width - 2).Render(body)
}

func renderHeader(f Frame, width int) string {
	title := styles.Title.Render("KubeChargeback ") + styles.Accent.Render("Dashboard")
	var badge string
	switch f.Result.Source {
	case loader.SourceLive:
		badge = styles.LiveBadge.Render("LIVE")
	case loader.SourceDemo:
		badge = styles.DemoBadge.Render("DEMO DATA")
	}

	w := f.Result.Data.Window
	span := ""
	if !w.From.IsZero() {
		span = styles.Header.Render(fmt.Sprintf("%s → %s", w.From.Format("Jan 02 15:04"), w.To.Format("Jan 02 15:04 MST")))
	}
	line := strings.Join(nonEmpty(title, badge, span), "  ")

	if f.Result.Source == loader.SourceDemo && f.Result.Err != nil {
		line += "\n" + styles.Warn.Render("API unavailable, showing demo dataset: "+help.ShortErr(f.Result.Err, width-40))
	}
	return line
}

func renderCards(f Frame, width int) string {
	cw := width/3 - 2
	if cw < 14 {
		cw = 14
	}
	card := func(title, value, unit string) string {
		return styles.Card.Width(cw).Render(
			styles.Header.Render(strings.ToUpper(title)) + "\n" +
				styles.Value.Render(value) + " " + styles.Faint.Render(unit),
		)
	}
	m := f.Metrics
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total Cost", widgets.Cost(m.TotalCost), "Units"),
		card("Compliance Score", m.ComplianceScore, "%"),
		card("Workloads", fmt.Sprint(m.ComplianceTotal), "Total"),
	)
}

func renderChart(f Frame, width int) string {
	rows := chartRows(f.Result.Data, f.Sel)
	title := "Cost by Namespace"
	if f.Sel.ShowTopApps {
		title = "Top Apps by Cost"
	}
	var b strings.Builder
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n")

	if len(rows) == 0 {
		b.WriteString(styles.Faint.Render("No allocation data available"))
		return b.String()
	}

	if f.Sel.ShowCostTable {
		b.WriteString(renderCostTable(f, rows, width))
	} else {
		b.WriteString(renderShareChart(f, rows, width))
	}
	b.WriteString("\n")
	b.WriteString(styles.Faint.Render("[t] top apps  [v] table view  [enter] filter"))
	return b.String()
}

func renderShareChart(f Frame, rows []domain.Allocation, width int) string {
	shares := report.Share(rows)

	var strip strings.Builder
	for i, n := range widgets.Strip(shares, width) {
		strip.WriteString(styles.Segment(i).Render(strings.Repeat("█", n)))
	}

	lines := []string{strip.String(), ""}
	wName := clamp(width-22, 8, 40)
	for i, a := range rows {
		marker := " "
		if !f.Sel.ShowTopApps && a.GroupKey == f.Sel.NamespaceFilter {
			marker = "▶"
		}
		line := fmt.Sprintf("%s %s %s %s %s",
			marker,
			styles.Segment(i).Render("●"),
			pad(a.GroupKey, wName),
			rpad(widgets.Cost(a.TotalCostUnits), 8),
			rpad(fmt.Sprintf("%.1f%%", shares[i]*100), 6),
		)
		lines = append(lines, highlight(f, PaneChart, i, line))
	}
	return strings.Join(lines, "\n")
}

func renderCostTable(f Frame, rows []domain.Allocation, width int) string {
	wName, wCPU, wMem, wCost, wShare, wBar := costColWidths(width)
	shares := report.Share(rows)

	head := strings.Join([]string{
		pad("NAME", wName), rpad("CPU", wCPU), rpad("MEM", wMem),
		rpad("COST", wCost), rpad("SHARE", wShare), pad("", wBar),
	}, " ")
	lines := []string{styles.Header.Render(head)}
	for i, a := range rows {
		line := strings.Join([]string{
			pad(a.GroupKey, wName),
			rpad(widgets.CPU(a.CPUMcpu), wCPU),
			rpad(widgets.Mem(a.MemMiB), wMem),
			rpad(widgets.Cost(a.TotalCostUnits), wCost),
			rpad(fmt.Sprintf("%.1f%%", shares[i]*100), wShare),
			widgets.Bar(shares[i], wBar),
		}, " ")
		lines = append(lines, highlight(f, PaneChart, i, line))
	}
	return strings.Join(lines, "\n")
}

func renderCompliance(f Frame, width int) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render(f.Sel.Title()))

	items, filtered := workloadRows(f.Result.Data, f.Sel)
	if filtered {
		b.WriteString("  " + styles.Faint.Render("[c] clear filter"))
		b.WriteString("\n")
		b.WriteString(styles.Faint.Render(fmt.Sprintf("%d workloads", len(items))))
		if len(items) == 0 {
			b.WriteString("\n" + styles.Faint.Render("No workloads match"))
			return b.String()
		}
		wName := clamp(width-20, 10, 60)
		for i, it := range items {
			line := fmt.Sprintf("%s %s %s",
				pad(it.Namespace+"/"+it.Name, wName),
				pad(it.Kind, 11),
				statusStyle(it.Status).Render(shortStatus(it.Status)),
			)
			b.WriteString("\n" + highlight(f, PaneCompliance, i, line))
		}
		return b.String()
	}

	s := f.Result.Data.Compliance.Summary
	counts := map[domain.ComplianceStatus]int{
		domain.StatusMissingRequests: s.MissingRequests,
		domain.StatusMissingLimits:   s.MissingLimits,
		domain.StatusBothMissing:     s.BothMissing,
		domain.StatusOK:              s.OK,
	}
	wLabel := clamp(width-8, 10, 40)
	for i, st := range summaryOrder {
		if st == domain.StatusOK {
			b.WriteString("\n" + styles.Faint.Render(strings.Repeat("─", clamp(width, 1, 60))))
		}
		label := report.StatusLabel(st)
		if st == domain.StatusOK {
			label = "Healthy Workloads"
		}
		line := pad(label, wLabel) + " " + statusStyle(st).Render(rpad(fmt.Sprint(counts[st]), 5))
		b.WriteString("\n" + highlight(f, PaneCompliance, i, line))
	}
	if f.Metrics.CountMismatch {
		b.WriteString("\n" + styles.Warn.Render(fmt.Sprintf("summary counts %d workloads, report lists %d",
			f.Metrics.ComplianceTotal, len(f.Result.Data.Compliance.Items))))
	}
	b.WriteString("\n" + styles.Faint.Render("[1-4] filter  [a] all workloads"))
	return b.String()
}

func renderAlerts(f Frame, width int) string {
	alerts := f.Result.Data.Alerts
	var b strings.Builder
	b.WriteString(styles.Title.Render(fmt.Sprintf("Budget Alerts (%d)", len(alerts))))
	if len(alerts) == 0 {
		b.WriteString("\n" + styles.Faint.Render("No budget alerts"))
		return b.String()
	}
	for i, a := range alerts {
		open := f.Sel.ExpandedAlert == a.ID
		marker := "▸"
		if open {
			marker = "▾"
		}
		line := fmt.Sprintf("%s %s %s %s %s",
			marker,
			severityStyle(a.Severity).Render(pad(string(a.Severity), 8)),
			styles.Faint.Render(a.Timestamp.UTC().Format("Jan 02 15:04")),
			pad(a.BudgetName, 18),
			trunc(a.Message, clamp(width-50, 10, 200)),
		)
		b.WriteString("\n" + highlight(f, PaneAlerts, i, line))
		if open && a.Details != nil {
			b.WriteString("\n" + renderDetails(*a.Details, width))
		}
	}
	return b.String()
}

func renderDetails(d domain.AlertDetails, width int) string {
	barW := clamp(width-46, 6, 30)
	use := func(label, cur, limit string, c, l int64) string {
		ratio := 0.0
		if l > 0 {
			ratio = float64(c) / float64(l)
		}
		st := styles.Good
		switch {
		case ratio > 1:
			st = styles.Danger
		case ratio >= 0.8:
			st = styles.Warn
		}
		return fmt.Sprintf("    %s %s / %s %s %s",
			pad(label, 4), rpad(cur, 8), pad(limit, 8),
			rpad(widgets.Pct(float64(c), float64(l)), 5),
			st.Render(widgets.Bar(ratio, barW)),
		)
	}
	lines := []string{
		use("CPU", widgets.CPU(d.CurrentCPUMcpu), widgets.CPU(d.LimitCPUMcpu), d.CurrentCPUMcpu, d.LimitCPUMcpu),
		use("MEM", widgets.Mem(d.CurrentMemMiB), widgets.Mem(d.LimitMemMiB), d.CurrentMemMiB, d.LimitMemMiB),
	}
	if len(d.TopOffenders) > 0 {
		lines = append(lines, "    "+styles.Header.Render("Top offenders"))
		for _, o := range d.TopOffenders {
			lines = append(lines, fmt.Sprintf("      %s %s %s %s",
				pad(o.App, 22), rpad(widgets.CPU(o.CPUMcpu), 7), rpad(widgets.Mem(o.MemMiB), 7),
				rpad(widgets.Cost(o.TotalCostUnits), 8)))
		}
	}
	return strings.Join(lines, "\n")
}

// detailHeight is the number of lines renderDetails produces for d.
func detailHeight(d domain.AlertDetails) int {
	n := 2
	if len(d.TopOffenders) > 0 {
		n += 1 + len(d.TopOffenders)
	}
	return n
}

func highlight(f Frame, p Pane, i int, line string) string {
	if f.Focus == p && f.Cursor == i {
		return styles.Selected.Render(line)
	}
	return line
}

func statusStyle(st domain.ComplianceStatus) lipgloss.Style {
	switch st {
	case domain.StatusOK:
		return styles.Good
	case domain.StatusMissingRequests:
		return styles.Warn
	case domain.StatusMissingLimits:
		return styles.Caution
	case domain.StatusBothMissing:
		return styles.Danger
	}
	return styles.Faint
}

func shortStatus(st domain.ComplianceStatus) string {
	switch st {
	case domain.StatusMissingRequests:
		return "NO-REQ"
	case domain.StatusMissingLimits:
		return "NO-LIM"
	case domain.StatusBothMissing:
		return "NONE"
	}
	return string(st)
}

func severityStyle(s domain.Severity) lipgloss.Style {
	switch s {
	case domain.SeverityCritical:
		return styles.Danger
	case domain.SeverityWarning:
		return styles.Warn
	}
	return styles.Faint
}

func nonEmpty(ss ...string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
