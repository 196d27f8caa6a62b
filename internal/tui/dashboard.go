package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"vitals/internal/service"
)

const cardWidth = 36

// DashboardModel is the dashboard screen model
type DashboardModel struct {
	queryService *service.QueryService
	units        Units
	data         *service.DashboardData
	loading      bool
	err          error
	width        int
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(qs *service.QueryService, units Units, width int) DashboardModel {
	return DashboardModel{
		queryService: qs,
		units:        units,
		loading:      true,
		width:        width,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

func (m DashboardModel) loadData() tea.Msg {
	data, err := m.queryService.Dashboard(time.Now())
	if err != nil {
		return dashboardDataMsg{err: err}
	}
	return dashboardDataMsg{data: data}
}

type dashboardDataMsg struct {
	data *service.DashboardData
	err  error
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.data == nil || len(m.data.Counts) == 0 {
		return "\n  No readings cached yet. Press 's' to sync."
	}

	cards := make([]string, 0, len(m.data.Summaries))
	for _, s := range m.data.Summaries {
		cards = append(cards, m.renderCard(s))
	}

	perRow := 1
	if m.width > 0 {
		perRow = m.width / (cardWidth + 4)
	}
	if perRow < 1 {
		perRow = 1
	}
	if perRow > 3 {
		perRow = 3
	}

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := i + perRow
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}

	footer := statusStyle.Render(fmt.Sprintf("Last sync %s · %s readings cached · r: refresh  2: charts  s: sync",
		FormatAgo(m.data.LastSync, m.data.GeneratedAt), humanize.Comma(int64(m.totalCount()))))

	return lipgloss.JoinVertical(lipgloss.Left, append(rows, footer)...)
}

func (m DashboardModel) totalCount() int {
	total := 0
	for _, c := range m.data.Counts {
		total += c.Count
	}
	return total
}

func (m DashboardModel) renderCard(s service.MetricSummary) string {
	title := cardTitleStyle.Render(s.Metric.Label())
	stats := s.Stats

	lines := []string{
		RenderMetric("Latest", m.units.FormatLast(s.Metric, stats)),
		RenderMetric("7-day avg", m.units.FormatAverage(s.Metric, stats)),
		RenderMetric("7-day count", fmt.Sprintf("%d of %d", stats.WindowCount, stats.TotalCount)),
		RenderMetric("Trend", RenderTrend(s.Trend)),
	}
	if stats.HasRange {
		inRange := "-"
		if stats.WindowCount > 0 {
			inRange = RenderInRange(stats.InRangePercent)
		}
		lines = append(lines, RenderMetric("In range", inRange))
	}

	if spark := m.sparkline(s); spark != "" {
		lines = append(lines, "", spark)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

// sparkline renders a compact plot of the chart points
func (m DashboardModel) sparkline(s service.MetricSummary) string {
	if len(s.Chart.Points) < 3 {
		return ""
	}
	values := make([]float64, len(s.Chart.Points))
	for i, p := range s.Chart.Points {
		values[i] = p.Value
	}
	graph := asciigraph.Plot(m.units.ConvertSeries(s.Metric, values),
		asciigraph.Height(3),
		asciigraph.Width(cardWidth-12),
		asciigraph.Precision(0),
	)
	return strings.TrimRight(graph, "\n")
}
