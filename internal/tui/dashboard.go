// internal/tui/dashboard.go
//
// The dashboard is a bubbletea program over a live scheduler. It shows the
// latest selection as a table, the pool metrics and the tail of the
// selection logbook. Each key press runs one scheduler operation.

package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/threadkeeper/internal/logbook"
	"github.com/kingrea/threadkeeper/internal/obligation"
	"github.com/kingrea/threadkeeper/internal/scheduler"
)

const logTailLines = 6

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")).MarginBottom(1)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).MarginTop(1)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	urgencyStyle = map[obligation.Urgency]lipgloss.Style{
		obligation.UrgencyCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		obligation.UrgencyHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")),
		obligation.UrgencyMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")),
		obligation.UrgencyLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("#999999")),
	}
)

var selectionColumns = []table.Column{
	{Title: "#", Width: 3},
	{Title: "Obligation", Width: 20},
	{Title: "Urgency", Width: 9},
	{Title: "Total", Width: 6},
	{Title: "Urg", Width: 5},
	{Title: "Sal", Width: 5},
	{Title: "Fresh", Width: 5},
	{Title: "Ten", Width: 5},
	{Title: "Dep", Width: 5},
	{Title: "Ctx", Width: 5},
	{Title: "Why", Width: 40},
}

// Option customizes Dashboard construction for tests and the CLI.
type Option func(*Dashboard)

// WithLogbook shows the tail of lb under the metrics panel.
func WithLogbook(lb *logbook.Logbook) Option {
	return func(d *Dashboard) {
		d.logbook = lb
	}
}

// WithMaxCount overrides the per-selection maximum. Negative values use the
// scheduler settings.
func WithMaxCount(n int) Option {
	return func(d *Dashboard) {
		d.maxCount = n
	}
}

// Dashboard is the bubbletea model.
type Dashboard struct {
	scheduler *scheduler.Scheduler
	logbook   *logbook.Logbook
	maxCount  int

	table     table.Model
	keys      keyMap
	help      help.Model
	last      scheduler.Selection
	selected  bool
	statusMsg string
	width     int
}

// New builds a dashboard over s.
func New(s *scheduler.Scheduler, opts ...Option) *Dashboard {
	d := &Dashboard{
		scheduler: s,
		maxCount:  scheduler.ConfiguredMax,
		keys:      defaultKeyMap(),
		help:      help.New(),
		statusMsg: "Press s to run a selection.",
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#5B8DEF"))
	d.table = table.New(
		table.WithColumns(selectionColumns),
		table.WithFocused(true),
		table.WithHeight(8),
		table.WithStyles(styles),
	)
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Run starts the dashboard in the alternate screen and blocks until quit.
func Run(d *Dashboard) error {
	_, err := tea.NewProgram(d, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("tui: run dashboard: %w", err)
	}
	return nil
}

// Init is called once when the program starts.
func (d *Dashboard) Init() tea.Cmd {
	return nil
}

// Update handles key presses and resizes.
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.help.Width = msg.Width
		d.table.SetWidth(max(40, msg.Width-4))
		d.table.SetHeight(max(4, msg.Height-20))
		return d, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, d.keys.Quit):
			return d, tea.Quit
		case key.Matches(msg, d.keys.Help):
			d.help.ShowAll = !d.help.ShowAll
			return d, nil
		case key.Matches(msg, d.keys.Select):
			d.runSelection()
			return d, nil
		case key.Matches(msg, d.keys.NextChapter):
			d.advanceChapter()
			d.runSelection()
			return d, nil
		case key.Matches(msg, d.keys.Reset):
			d.scheduler.ResetInjectionStats()
			d.statusMsg = "Injection stats reset."
			return d, nil
		}
	}

	var cmd tea.Cmd
	d.table, cmd = d.table.Update(msg)
	return d, cmd
}

func (d *Dashboard) runSelection() {
	d.last = d.scheduler.Select(d.maxCount)
	d.selected = true
	d.table.SetRows(d.rows())
	d.table.GotoTop()
	d.statusMsg = fmt.Sprintf("Selected %d of %d obligations in %s.",
		len(d.last.Scores), len(d.scheduler.GetAllObligations()), d.last.Duration)
}

func (d *Dashboard) advanceChapter() {
	ctx := d.scheduler.Context()
	d.scheduler.UpdateContext(ctx.CurrentChapter+1, ctx.RecentCharacters, ctx.TensionLevel, ctx.NarrativeContext)
}

func (d *Dashboard) rows() []table.Row {
	rows := make([]table.Row, 0, len(d.last.Scores))
	for i, score := range d.last.Scores {
		urgency := ""
		if o, ok := d.scheduler.GetObligation(score.ObligationID); ok {
			urgency = string(o.Urgency)
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			score.ObligationID,
			urgency,
			fmt.Sprintf("%.3f", score.TotalScore),
			fmt.Sprintf("%.2f", score.UrgencyScore),
			fmt.Sprintf("%.2f", score.SalienceScore),
			fmt.Sprintf("%.2f", score.FreshnessScore),
			fmt.Sprintf("%.2f", score.TensionBalanceScore),
			fmt.Sprintf("%.2f", score.DependencyScore),
			fmt.Sprintf("%.2f", score.ContextRelevanceScore),
			score.Justification,
		})
	}
	return rows
}

// View renders the dashboard.
func (d *Dashboard) View() string {
	sections := []string{
		headerStyle.Render("⬡ THREADKEEPER"),
		d.renderContext(),
		panelStyle.Render(d.renderSelection()),
		panelStyle.Render(d.renderMetrics()),
	}
	if logPanel := d.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, footerStyle.Render(d.statusMsg), d.help.View(d.keys))
	return strings.Join(sections, "\n")
}

func (d *Dashboard) renderContext() string {
	ctx := d.scheduler.Context()
	characters := "none"
	if len(ctx.RecentCharacters) > 0 {
		characters = strings.Join(ctx.RecentCharacters, ", ")
	}
	return mutedStyle.Render(fmt.Sprintf("Chapter %d · tension %+.2f · recent: %s",
		ctx.CurrentChapter, ctx.TensionLevel, characters))
}

func (d *Dashboard) renderSelection() string {
	title := titleStyle.Render("Selection")
	if !d.selected {
		return lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("No selection yet."))
	}
	parts := []string{title, d.table.View()}
	if len(d.last.Skipped) > 0 {
		ids := make([]string, 0, len(d.last.Skipped))
		for id := range d.last.Skipped {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		var lines []string
		for _, id := range ids {
			reason := d.last.Skipped[id]
			lines = append(lines, fmt.Sprintf("skipped %s · %s", id, reason.Reason))
		}
		parts = append(parts, mutedStyle.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (d *Dashboard) renderMetrics() string {
	m := d.scheduler.Metrics()
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Pool (%d)", m.TotalObligations)),
		fmt.Sprintf("Avg injections %.2f · avg fulfillment %.2f · longest chain %d",
			m.AverageInjectionCount, m.AverageFulfillment, m.DependencyChainLengthMax),
		fmt.Sprintf("Tension -%.0f%% ~%.0f%% +%.0f%%",
			m.TensionDistribution.Negative*100, m.TensionDistribution.Neutral*100, m.TensionDistribution.Positive*100),
	}
	var tiers []string
	for _, u := range obligation.Urgencies {
		tiers = append(tiers, urgencyStyle[u].Render(fmt.Sprintf("%s %d", u, m.ByUrgency[u])))
	}
	lines = append(lines, strings.Join(tiers, "  "))
	if m.StaleCount > 0 || m.OverusedCount > 0 {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("⚠ %d stale · %d overused", m.StaleCount, m.OverusedCount)))
	}
	return strings.Join(lines, "\n")
}

func (d *Dashboard) renderLogPanel() string {
	if d.logbook == nil {
		return ""
	}
	lines, total := d.logbook.Tail(logTailLines)
	if len(lines) == 0 {
		return ""
	}
	head := titleStyle.Render(fmt.Sprintf("LOG · %d entries", total))
	return panelStyle.Render(head + "\n" + mutedStyle.Render(strings.Join(lines, "\n")))
}
