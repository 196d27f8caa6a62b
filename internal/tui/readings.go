package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vitals/internal/analysis"
	"vitals/internal/service"
)

// ReadingsModel is a scrollable list of cached readings for one metric
type ReadingsModel struct {
	queryService *service.QueryService
	units        Units
	metricIdx    int
	readings     []analysis.Reading
	viewport     viewport.Model
	loading      bool
	err          error
	ready        bool
}

// NewReadingsModel creates a new readings model
func NewReadingsModel(qs *service.QueryService, units Units, width, height int) ReadingsModel {
	m := ReadingsModel{
		queryService: qs,
		units:        units,
		loading:      true,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-8)
		m.ready = true
	}

	return m
}

// Init initializes the readings screen
func (m ReadingsModel) Init() tea.Cmd {
	return m.loadReadings
}

type readingsLoadedMsg struct {
	readings []analysis.Reading
	err      error
}

func (m ReadingsModel) metric() analysis.Metric {
	return analysis.AllMetrics[m.metricIdx]
}

func (m ReadingsModel) loadReadings() tea.Msg {
	readings, err := m.queryService.Readings(m.metric(), service.ReadingsPageLimit)
	return readingsLoadedMsg{readings: readings, err: err}
}

// Update handles messages
func (m ReadingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case readingsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.readings = msg.readings
		if m.ready {
			m.viewport.SetContent(m.renderContent())
			m.viewport.GotoTop()
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-8)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 8
		}
		m.viewport.SetContent(m.renderContent())

	case tea.KeyMsg:
		switch msg.String() {
		case "m":
			m.metricIdx = (m.metricIdx + 1) % len(analysis.AllMetrics)
			m.loading = true
			return m, m.loadReadings
		case "r":
			m.loading = true
			return m, m.loadReadings
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the readings screen
func (m ReadingsModel) View() string {
	title := cardTitleStyle.Render(fmt.Sprintf("%s readings  %s", m.metric().Label(), mutedStyle.Render("(m: next metric)")))

	if m.loading {
		return lipgloss.JoinVertical(lipgloss.Left, title, "  Loading readings...")
	}

	if m.err != nil {
		return lipgloss.JoinVertical(lipgloss.Left, title, errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  j/k or arrows: scroll  m: next metric  r: refresh")
	return lipgloss.JoinVertical(lipgloss.Left, title, m.viewport.View(), footer)
}

func (m ReadingsModel) renderContent() string {
	if len(m.readings) == 0 {
		return "  No readings cached for this metric."
	}

	rng, hasRange := m.queryService.Range(m.metric())

	var rows []string
	rows = append(rows, tableHeaderStyle.Render(fmt.Sprintf("%-18s  %-18s  %s", "Recorded", "Value", "Note")))

	for _, r := range m.readings {
		value := m.units.FormatReading(r)
		if hasRange && !rng.Contains(r.Value) {
			value = errorStyle.Render(fmt.Sprintf("%-18s", value))
		} else {
			value = fmt.Sprintf("%-18s", value)
		}

		note := ""
		if n, ok := r.Metadata["note"].(string); ok {
			note = n
		}

		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-18s  %s  %s",
			r.Timestamp.Local().Format("Jan 02 2006 15:04"), value, note)))
	}

	return strings.Join(rows, "\n")
}
