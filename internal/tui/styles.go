package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"vitals/internal/analysis"
)

// Colors
var (
	primaryColor   = lipgloss.Color("#0EA5E9") // Sky
	secondaryColor = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	textColor      = lipgloss.Color("#F9FAFB") // Light gray
	tooltipBg      = lipgloss.Color("#1F2937") // Dark gray
)

// Styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Background(primaryColor).
			Padding(0, 1).
			MarginBottom(1)

	navStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginBottom(1)

	navActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	navInactiveStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	metricLabelStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Width(14)

	metricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(textColor)

	trendUpStyle   = lipgloss.NewStyle().Foreground(warningColor)
	trendDownStyle = lipgloss.NewStyle().Foreground(primaryColor)
	trendFlatStyle = lipgloss.NewStyle().Foreground(mutedColor)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor).
				Padding(0, 1)

	tableRowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	tooltipStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(tooltipBg).
			Padding(0, 1)

	markerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(warningColor)

	statusStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	successStyle = lipgloss.NewStyle().Foreground(secondaryColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondaryColor)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	progressFullStyle  = lipgloss.NewStyle().Foreground(secondaryColor)
	progressEmptyStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

// RenderMetric renders a label/value row
func RenderMetric(label, value string) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		metricLabelStyle.Render(label),
		metricValueStyle.Render(value),
	)
}

// RenderTrend renders a trend arrow. Rising values are highlighted since most
// tracked metrics are better flat or falling.
func RenderTrend(t analysis.Trend) string {
	switch t {
	case analysis.TrendUp:
		return trendUpStyle.Render(t.Arrow() + " " + t.String())
	case analysis.TrendDown:
		return trendDownStyle.Render(t.Arrow() + " " + t.String())
	default:
		return trendFlatStyle.Render(t.Arrow() + " " + t.String())
	}
}

// RenderInRange colors an in-range percentage
func RenderInRange(percent int) string {
	style := successStyle
	switch {
	case percent < 50:
		style = errorStyle
	case percent < 80:
		style = warningStyle
	}
	return style.Render(fmt.Sprintf("%d%%", percent))
}

// RenderProgressBar renders an ASCII progress bar
func RenderProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	return progressFullStyle.Render(strings.Repeat("█", filled)) +
		progressEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// RenderKeyHelp renders a key binding help item
func RenderKeyHelp(key, desc string) string {
	return helpKeyStyle.Render(key) + " " + helpDescStyle.Render(desc)
}
