package tui

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"vitals/internal/analysis"
	"vitals/internal/service"
)

const (
	plotHeight = 10
	plotIndent = 2 // columns left of the plot in the chart view
)

// ChartModel is the per-metric chart screen. Points are selected with the
// arrow keys or by clicking a plot column.
type ChartModel struct {
	queryService *service.QueryService
	units        Units
	exportDir    string

	metricIdx int
	summary   *service.MetricSummary
	selected  int

	loading bool
	err     error
	status  string
	width   int
}

// NewChartModel creates a chart model starting at the first metric
func NewChartModel(qs *service.QueryService, units Units, exportDir string, width int) ChartModel {
	return ChartModel{
		queryService: qs,
		units:        units,
		exportDir:    exportDir,
		loading:      true,
		width:        width,
	}
}

// Init initializes the chart screen
func (m ChartModel) Init() tea.Cmd {
	return m.load
}

func (m ChartModel) metric() analysis.Metric {
	return analysis.AllMetrics[m.metricIdx]
}

type chartLoadedMsg struct {
	summary *service.MetricSummary
	err     error
}

type chartExportedMsg struct {
	path string
	err  error
}

func (m ChartModel) load() tea.Msg {
	summary, err := m.queryService.MetricSummary(m.metric(), time.Now())
	return chartLoadedMsg{summary: summary, err: err}
}

func (m ChartModel) export() tea.Msg {
	if m.summary == nil {
		return chartExportedMsg{err: fmt.Errorf("nothing to export")}
	}
	path, err := ExportSVG(m.exportDir, m.metric(), m.summary.Chart, m.queryService.ChartDimensions())
	return chartExportedMsg{path: path, err: err}
}

// Update handles messages
func (m ChartModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case chartLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.summary = msg.summary
		m.selected = m.pointCount() - 1

	case chartExportedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("Export failed: " + msg.err.Error())
		} else {
			m.status = successStyle.Render("Saved " + msg.path)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h":
			if m.selected > 0 {
				m.selected--
			}
		case "right", "l":
			if m.selected < m.pointCount()-1 {
				m.selected++
			}
		case "home":
			m.selected = 0
		case "end":
			m.selected = m.pointCount() - 1
		case "m":
			m.metricIdx = (m.metricIdx + 1) % len(analysis.AllMetrics)
			m.loading = true
			m.status = ""
			return m, m.load
		case "r":
			m.loading = true
			return m, m.load
		case "e":
			return m, m.export
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if idx, ok := m.indexAt(msg.X, msg.Y); ok {
				m.selected = idx
			}
		}
	}
	return m, nil
}

func (m ChartModel) pointCount() int {
	if m.summary == nil {
		return 0
	}
	return len(m.summary.Chart.Points)
}

// plotColumns returns the number of data columns asciigraph draws
func (m ChartModel) plotColumns() int {
	if m.width <= 0 {
		return 60
	}
	cols := m.width - 20
	if cols < 20 {
		cols = 20
	}
	if cols > 90 {
		cols = 90
	}
	return cols
}

func (m ChartModel) plotValues() []float64 {
	points := m.summary.Chart.Points
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	values = m.units.ConvertSeries(m.metric(), values)
	if len(values) == 1 {
		values = append(values, values[0])
	}
	return values
}

func (m ChartModel) plot() string {
	return asciigraph.Plot(m.plotValues(),
		asciigraph.Height(plotHeight),
		asciigraph.Width(m.plotColumns()),
		asciigraph.Precision(1),
	)
}

// axisColumn returns the column of the y axis in a rendered plot. Data column
// 0 sits on the axis.
func axisColumn(plot string) int {
	first, _, _ := strings.Cut(plot, "\n")
	idx := strings.IndexAny(first, "┤┼")
	if idx < 0 {
		return 0
	}
	return utf8.RuneCountInString(first[:idx])
}

// chartX maps a plot column to the engine's horizontal chart coordinate
func chartX(col, cols int, dims analysis.ChartDimensions) float64 {
	if cols <= 1 {
		return dims.Padding
	}
	return dims.Padding + float64(col)/float64(cols-1)*(dims.Width-2*dims.Padding)
}

// columnFor maps a point index to its plot column
func columnFor(index, n, cols int) int {
	if n <= 1 {
		return 0
	}
	return int(math.Round(float64(index) * float64(cols-1) / float64(n-1)))
}

// indexAt maps a cell of the chart view to the nearest chart point. Only
// cells inside the plot rows select anything.
func (m ChartModel) indexAt(x, y int) (int, bool) {
	if m.loading || m.err != nil || m.pointCount() == 0 {
		return 0, false
	}
	plot := m.plot()
	row := y - lipgloss.Height(m.title())
	if row < 0 || row >= lipgloss.Height(plot) {
		return 0, false
	}
	cols := m.plotColumns()
	col := x - plotIndent - axisColumn(plot)
	if col < 0 || col >= cols {
		return 0, false
	}
	return m.summary.Chart.NearestIndex(chartX(col, cols, m.queryService.ChartDimensions()))
}

func (m ChartModel) title() string {
	return cardTitleStyle.Render(fmt.Sprintf("%s  %s", m.metric().Label(), mutedStyle.Render("(m: next metric)")))
}

// View renders the chart screen
func (m ChartModel) View() string {
	title := m.title()

	if m.loading {
		return lipgloss.JoinVertical(lipgloss.Left, title, "  Loading chart...")
	}
	if m.err != nil {
		return lipgloss.JoinVertical(lipgloss.Left, title, errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
	}
	if m.pointCount() == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			"  No readings yet. Press 's' to sync.",
			statusStyle.Render("  m: next metric"))
	}

	plot := m.plot()
	indent := strings.Repeat(" ", plotIndent)

	var lines []string
	for _, line := range strings.Split(plot, "\n") {
		lines = append(lines, indent+line)
	}

	n := m.pointCount()
	markerCol := plotIndent + axisColumn(plot) + columnFor(m.selected, n, m.plotColumns())
	lines = append(lines, strings.Repeat(" ", markerCol)+markerStyle.Render("▲"))
	lines = append(lines, indent+m.tooltip())

	sections := []string{title, strings.Join(lines, "\n"), m.renderStats()}
	if m.status != "" {
		sections = append(sections, "  "+m.status)
	}
	sections = append(sections, statusStyle.Render("  ←/→ or click: select point  m: next metric  e: export SVG  r: refresh"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ChartModel) tooltip() string {
	p, ok := m.summary.Chart.PointAt(m.selected)
	if !ok {
		return ""
	}
	text := fmt.Sprintf("%s  %s  (%d/%d)", p.Label, m.units.FormatValue(m.metric(), p.Value), m.selected+1, m.pointCount())
	style := tooltipStyle
	if p.Color == service.ColorOutOfRange {
		style = style.Foreground(errorColor)
	}
	return style.Render(text)
}

func (m ChartModel) renderStats() string {
	s := m.summary.Stats
	lines := []string{
		RenderMetric("  Latest", m.units.FormatLast(m.metric(), s)),
		RenderMetric("  7-day avg", m.units.FormatAverage(m.metric(), s)),
		RenderMetric("  Trend", RenderTrend(m.summary.Trend)),
	}
	if s.HasRange && m.summary.Range != nil {
		rng := fmt.Sprintf("%s (%.0f-%.0f)", RenderInRange(s.InRangePercent), m.summary.Range.Low, m.summary.Range.High)
		lines = append(lines, RenderMetric("  In range", rng))
	}
	return "\n" + strings.Join(lines, "\n")
}
