// Package statsui provides the Bubble Tea session-history browser.
package statsui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/stats"
)

const (
	tabSessions = iota
	tabChars
)

const (
	// headerHeight covers the tab line, the summary line and the sparkline.
	headerHeight = 3
	trendWidth   = 16
)

var (
	activeTabStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Underline(true)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	sparkStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	src stats.Source
	cfg model.StatsConfig

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	tables    []table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model and loads the first report.
func NewModel(src stats.Source, cfg model.StatsConfig) *Model {
	m := &Model{
		src:  src,
		cfg:  cfg,
		tabs: []string{"Sessions", "Characters"},
	}
	m.tables = []table.Model{newTable(sessionColumns()), newTable(charColumns())}
	m.tables[tabSessions].Focus()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "tab", "right", "l":
			m.moveTab(1)
			return m, nil
		case "shift+tab", "left", "h":
			m.moveTab(-1)
			return m, nil
		case "r":
			m.refreshReport()
			return m, nil
		}
		var cmd tea.Cmd
		m.tables[m.activeTab], cmd = m.tables[m.activeTab].Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	lines := []string{m.renderTabs(), m.renderSummary(), m.renderSparkline()}
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(m.errMsg))
	} else {
		lines = append(lines, m.tables[m.activeTab].View())
	}
	lines = append(lines, headerStyle.Render("←/→ switch · ↑/↓ scroll · r reload · q quit"))
	return strings.Join(lines, "\n")
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.src, m.cfg)
	if err != nil {
		m.errMsg = fmt.Sprintf("Failed to load stats: %v", err)
		return
	}
	m.errMsg = ""
	m.report = report
	m.tables[tabSessions].SetRows(sessionRows(report.Sessions))
	m.tables[tabChars].SetRows(charRows(report.CharAggs, report.CharTrends))
}

func (m *Model) moveTab(delta int) {
	m.tables[m.activeTab].Blur()
	m.activeTab = (m.activeTab + delta + len(m.tabs)) % len(m.tabs)
	m.tables[m.activeTab].Focus()
}

func (m *Model) updateLayout() {
	// Tabs, summary and sparkline above, help below.
	height := m.height - headerHeight - 1
	if height < 2 {
		height = 2
	}
	for i := range m.tables {
		m.tables[i].SetWidth(m.width)
		m.tables[i].SetHeight(height)
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, len(m.tabs))
	for i, name := range m.tabs {
		if i == m.activeTab {
			parts[i] = activeTabStyle.Render(name)
		} else {
			parts[i] = inactiveTabStyle.Render(name)
		}
	}
	return strings.Join(parts, "   ")
}

func (m *Model) renderSummary() string {
	sum := m.report.Summary
	if sum.Sessions == 0 {
		return headerStyle.Render("No sessions found.")
	}
	line := fmt.Sprintf("%d sessions · avg %.1f WPM · best %d WPM · avg %.1f%% · %d errors · %s practiced",
		sum.Sessions, sum.AvgWPM, sum.BestWPM, sum.AvgAccuracy, sum.TotalErrors,
		(time.Duration(sum.TotalMs) * time.Millisecond).Round(time.Second))
	if len(m.report.TopChars) > 0 {
		labels := make([]string, len(m.report.TopChars))
		for i, ch := range m.report.TopChars {
			labels[i] = stats.CharLabel(ch)
		}
		line += " · most typed " + strings.Join(labels, " ")
	}
	return headerStyle.Render(line)
}

func (m *Model) renderSparkline() string {
	width := m.width - len("WPM ")
	if width < 1 {
		width = 0
	}
	spark := stats.Sparkline(stats.WPMSeries(m.report.Sessions), width)
	if spark == "" {
		return ""
	}
	return headerStyle.Render("WPM ") + sparkStyle.Render(spark)
}

func newTable(columns []table.Column) table.Model {
	t := table.New(table.WithColumns(columns), table.WithHeight(10))
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func sessionColumns() []table.Column {
	return []table.Column{
		{Title: "Finished", Width: 16},
		{Title: "Source", Width: 20},
		{Title: "WPM", Width: 5},
		{Title: "Accuracy", Width: 9},
		{Title: "Errors", Width: 7},
		{Title: "Progress", Width: 9},
		{Title: "Duration", Width: 9},
	}
}

// sessionRows lists the most recent session first.
func sessionRows(sessions []model.SessionAggregate) []table.Row {
	rows := make([]table.Row, 0, len(sessions))
	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		rows = append(rows, table.Row{
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			truncate(s.Source, 20),
			fmt.Sprintf("%d", s.WPM),
			fmt.Sprintf("%d%%", s.Accuracy),
			fmt.Sprintf("%d", s.Errors),
			fmt.Sprintf("%d%%", s.Progress),
			(time.Duration(s.DurationMs) * time.Millisecond).Round(time.Second).String(),
		})
	}
	return rows
}

func charColumns() []table.Column {
	return []table.Column{
		{Title: "Char", Width: 8},
		{Title: "Accuracy", Width: 9},
		{Title: "Avg Latency (ms)", Width: 17},
		{Title: "Correct", Width: 7},
		{Title: "Incorrect", Width: 9},
		{Title: "Trend", Width: trendWidth},
	}
}

// charRows lists the weakest characters first, each with a sparkline of its
// accuracy over recent sessions.
func charRows(aggs []model.CharAggregate, trends map[string][]float64) []table.Row {
	sorted := append([]model.CharAggregate(nil), aggs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ai, aj := stats.CharAccuracy(sorted[i]), stats.CharAccuracy(sorted[j])
		if ai == aj {
			return sorted[i].Char < sorted[j].Char
		}
		return ai < aj
	})
	rows := make([]table.Row, 0, len(sorted))
	for _, agg := range sorted {
		lat := 0.0
		if agg.LatencyCount > 0 {
			lat = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
		}
		rows = append(rows, table.Row{
			stats.CharLabel(agg.Char),
			fmt.Sprintf("%.2f%%", stats.CharAccuracy(agg)*100),
			fmt.Sprintf("%.1f", lat),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
			stats.Sparkline(trends[agg.Char], trendWidth),
		})
	}
	return rows
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
