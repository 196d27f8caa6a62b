package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	sections := []string{
		cardTitleStyle.Render("Keyboard Shortcuts"),
		renderHelpSection("Navigation", []keyHelp{
			{"1", "Dashboard"},
			{"2", "Charts"},
			{"3", "Readings"},
			{"4", "Profile"},
			{"5 or s", "Sync screen"},
			{"?", "Help (this screen)"},
			{"esc", "Back / close help"},
			{"q", "Quit (stops a running sync)"},
		}),
		renderHelpSection("Charts", []keyHelp{
			{"← / →", "Select previous / next point"},
			{"click", "Select the point under the cursor"},
			{"m", "Next metric"},
			{"e", "Export chart as SVG to ~/.vitals/charts"},
		}),
		renderHelpSection("Readings", []keyHelp{
			{"j / k", "Scroll"},
			{"m", "Next metric"},
		}),
		renderHelpSection("Sync", []keyHelp{
			{"s / enter", "Start a sync"},
			{"esc", "Cancel a running sync"},
		}),
		renderHelpSection("Anywhere", []keyHelp{
			{"r", "Refresh"},
		}),
		renderGlossary(),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func renderHelpSection(title string, keys []keyHelp) string {
	lines := []string{"", sectionStyle.Render(title)}
	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}
	return strings.Join(lines, "\n")
}

func renderGlossary() string {
	lines := []string{"", sectionStyle.Render("What the numbers mean"), ""}

	terms := []struct {
		name string
		desc string
	}{
		{"7-day avg", "Mean of readings from the last seven days."},
		{"In range", "Share of last-7-day readings inside the normal range (blood sugar 70-140 mg/dL unless configured)."},
		{"Trend", "Later half of the week vs. earlier half. More than 5% change is up or down."},
		{"BMI", "Weight (kg) / height (m)². 18.5-24.9 is the normal band."},
		{"Daily calories", "Mifflin-St Jeor BMR times your activity factor."},
	}

	for _, t := range terms {
		lines = append(lines, "  "+helpKeyStyle.Render(t.name), "  "+mutedStyle.Render(t.desc), "")
	}
	return strings.Join(lines, "\n")
}
