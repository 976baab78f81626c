// internal/app/app.go
package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/kubechargeback/cbdash/internal/loader"
	"github.com/kubechargeback/cbdash/internal/report"
	"github.com/kubechargeback/cbdash/internal/ui/styles"
)

// Runner performs one load cycle.
type Runner interface {
	Run(ctx context.Context) loader.Result
}

type loadedMsg loader.Result
// tickMsg carries the refresh generation that scheduled it; stale ones are dropped.
type tickMsg struct{ seq int }

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	runner  Runner
	refresh time.Duration
	log     *zap.Logger

	loading    bool
	refreshSeq int
	spinner    spinner.Model
	vp      viewport.Model

	res     loader.Result
	metrics report.Metrics
	sel     report.Selection

	focus  Pane
	cursor [3]int

	width, height int
}

func New(r Runner, refresh time.Duration, log *zap.Logger) Model {
	ctx, cancel := context.WithCancel(context.Background())
	if log == nil {
		log = zap.NewNop()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Accent

	return Model{
		ctx:     ctx,
		cancel:  cancel,
		runner:  r,
		refresh: refresh,
		log:     log,
		loading: true,
		spinner: sp,
		vp:      viewport.New(100, 30),
		width:   100,
		height:  32,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m Model) load() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return loadedMsg(m.runner.Run(ctx))
	}
}

func (m Model) frame() Frame {
	return Frame{
		Result:  m.res,
		Metrics: m.metrics,
		Sel:     m.sel,
		Focus:   m.focus,
		Cursor:  m.cursor[m.focus],
		Width:   m.width,
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		footerH := lipgloss.Height(styles.Footer.Render("x"))
		m.vp.Width = m.width
		m.vp.Height = clamp(m.height-footerH, 5, m.height)
		m.sync()
		return m, nil

	case loadedMsg:
		if m.ctx.Err() != nil {
			return m, nil
		}
		m.loading = false
		m.res = loader.Result(msg)
		m.metrics = report.Derive(m.res.Data)
		if m.sel.ExpandedAlert != "" && !m.hasAlert(m.sel.ExpandedAlert) {
			m.sel.ExpandedAlert = ""
		}
		if m.res.Err != nil {
			m.log.Warn("load finished with error",
				zap.String("source", m.res.Source.String()), zap.Error(m.res.Err))
		}
		m.sync()
		if m.refresh > 0 {
			seq := m.refreshSeq
			return m, tea.Tick(m.refresh, func(time.Time) tea.Msg { return tickMsg{seq: seq} })
		}
		return m, nil

	case tickMsg:
		if msg.seq != m.refreshSeq {
			return m, nil
		}
		return m.reload()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.cancel()
		return m, tea.Quit

	case "r":
		return m.reload()

	case "tab":
		m.focus = m.focus.next()
	case "shift+tab":
		m.focus = (m.focus + 2) % 3

	case "up", "k":
		m.cursor[m.focus]--
	case "down", "j":
		m.cursor[m.focus]++

	case "pgup", "pgdown", "home", "end":
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd

	case "enter", " ":
		m.activate()

	case "1", "2", "3", "4":
		i := int(msg.String()[0] - '1')
		m.apply(report.SelectCompliance{Status: summaryOrder[i]})
		m.focus = PaneCompliance
	case "a":
		m.apply(report.ToggleAllWorkloads{})
		m.focus = PaneCompliance
	case "t":
		m.apply(report.ToggleTopApps{})
		m.cursor[PaneChart] = 0
	case "v":
		m.apply(report.ToggleCostTable{})
	case "c":
		m.apply(report.ClearFilter{})
	case "esc":
		if m.sel.Lens() != report.LensNone {
			m.apply(report.ClearFilter{})
		} else if m.sel.ExpandedAlert != "" {
			m.apply(report.ToggleAlert{ID: m.sel.ExpandedAlert})
		}
	default:
		return m, nil
	}
	m.sync()
	return m, nil
}

// activate runs the action of the row under the cursor.
func (m *Model) activate() {
	d := m.res.Data
	i := m.cursor[m.focus]
	switch m.focus {
	case PaneChart:
		// apps are not namespaces; only the namespace chart filters
		if m.sel.ShowTopApps || i >= len(d.Allocations) {
			return
		}
		m.apply(report.SelectNamespace{Namespace: d.Allocations[i].GroupKey})
	case PaneCompliance:
		if m.sel.Lens() != report.LensNone {
			return
		}
		m.apply(report.SelectCompliance{Status: summaryOrder[clamp(i, 0, len(summaryOrder)-1)]})
	case PaneAlerts:
		if i < len(d.Alerts) {
			m.apply(report.ToggleAlert{ID: d.Alerts[i].ID})
		}
	}
}

func (m *Model) apply(ev report.Event) {
	before := m.sel.Lens()
	m.sel = report.Reduce(m.sel, ev)
	if m.sel.Lens() != before {
		m.cursor[PaneCompliance] = 0
	}
	m.log.Debug("selection changed", zap.Any("selection", m.sel))
}

func (m Model) reload() (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	m.loading = true
	m.refreshSeq++
	return m, tea.Batch(m.spinner.Tick, m.load())
}

func (m Model) hasAlert(id string) bool {
	for _, a := range m.res.Data.Alerts {
		if a.ID == id {
			return true
		}
	}
	return false
}

// sync clamps cursors to the current rows and re-renders into the viewport,
// scrolling so the focused row stays visible.
func (m *Model) sync() {
	f := m.frame()
	for p := PaneChart; p <= PaneAlerts; p++ {
		n := rowCount(f, p)
		m.cursor[p] = clamp(m.cursor[p], 0, maxInt(n-1, 0))
	}
	f = m.frame()

	top, alerts := layout(f)
	content := top
	if alerts != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, top, alerts)
	}
	m.vp.SetContent(content)

	if m.focus != PaneAlerts {
		m.vp.GotoTop()
		return
	}
	// border + title, then one line per alert; expanded details above the
	// cursor push it further down
	line := lipgloss.Height(top) + 2 + m.cursor[PaneAlerts]
	for i, a := range m.res.Data.Alerts {
		if i >= m.cursor[PaneAlerts] {
			break
		}
		if a.ID == m.sel.ExpandedAlert && a.Details != nil {
			line += detailHeight(*a.Details)
		}
	}
	if line < m.vp.YOffset || line >= m.vp.YOffset+m.vp.Height {
		m.vp.SetYOffset(maxInt(line-m.vp.Height/2, 0))
	}
}

func (m Model) View() string {
	if m.loading && m.res.Source == loader.SourceNone && m.res.Err == nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading dashboard data...")
	}

	status := ""
	if m.loading {
		status = m.spinner.View() + " reloading  "
	}
	footer := styles.Footer.Render(status +
		"[tab] pane • ↑/↓ move • [enter] select • [1-4] status • [a] all • [t] top apps • [v] table • [c] clear • [r] reload • [q] quit")
	return lipgloss.JoinVertical(lipgloss.Left, m.vp.View(), footer)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
