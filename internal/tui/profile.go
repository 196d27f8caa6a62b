package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"vitals/internal/analysis"
	"vitals/internal/service"
)

// ProfileModel shows BMI, calorie target and healthy weight range
type ProfileModel struct {
	queryService *service.QueryService
	units        Units
	summary      *service.ProfileSummary
	loading      bool
	err          error
}

// NewProfileModel creates a new profile model
func NewProfileModel(qs *service.QueryService, units Units) ProfileModel {
	return ProfileModel{
		queryService: qs,
		units:        units,
		loading:      true,
	}
}

// Init initializes the profile screen
func (m ProfileModel) Init() tea.Cmd {
	return m.load
}

type profileLoadedMsg struct {
	summary *service.ProfileSummary
	err     error
}

func (m ProfileModel) load() tea.Msg {
	summary, err := m.queryService.ProfileSummary()
	return profileLoadedMsg{summary: summary, err: err}
}

// Update handles messages
func (m ProfileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.summary = msg.summary
	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.load
		}
	}
	return m, nil
}

// View renders the profile screen
func (m ProfileModel) View() string {
	if m.loading {
		return "\n  Loading profile..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	s := m.summary
	p := s.Profile

	body := []string{
		RenderMetric("Height", orDash(p.HeightCm > 0, fmt.Sprintf("%.0f cm", p.HeightCm))),
		RenderMetric("Weight", orDash(p.WeightKg > 0, m.units.FormatWeight(p.WeightKg))),
		RenderMetric("Age", orDash(p.Age > 0, fmt.Sprintf("%d", p.Age))),
		RenderMetric("Gender", orDash(p.Gender != "", p.Gender)),
		RenderMetric("Activity", orDash(p.ActivityLevel != "", strings.ReplaceAll(p.ActivityLevel, "_", " "))),
	}
	if s.WeightFromReading {
		body = append(body, mutedStyle.Render("Weight taken from your latest reading"))
	}
	bodyCard := cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left,
		cardTitleStyle.Render("Profile"), lipgloss.JoinVertical(lipgloss.Left, body...)))

	indices := []string{
		RenderMetric("BMI", m.renderBMI()),
		RenderMetric("Daily calories", humanize.Comma(int64(s.TargetCalories))+" kcal"),
	}
	if s.HasHealthyRange {
		indices = append(indices, RenderMetric("Healthy weight",
			fmt.Sprintf("%s - %s", m.units.FormatWeight(s.HealthyLowKg), m.units.FormatWeight(s.HealthyHighKg))))
	} else {
		indices = append(indices, RenderMetric("Healthy weight", "-"))
	}
	if s.TargetCalories == analysis.DefaultCalories && (p.Age <= 0 || p.HeightCm <= 0 || p.WeightKg <= 0) {
		indices = append(indices, mutedStyle.Render("Set height, weight and age for a personal target"))
	}
	indexCard := cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left,
		cardTitleStyle.Render("Health Indices"), lipgloss.JoinVertical(lipgloss.Left, indices...)))

	footer := statusStyle.Render("Edit ~/.vitals/config.json to change your profile · r: refresh")
	return lipgloss.JoinVertical(lipgloss.Left, lipgloss.JoinHorizontal(lipgloss.Top, bodyCard, indexCard), footer)
}

func (m ProfileModel) renderBMI() string {
	s := m.summary
	if !s.HasBMI {
		return "-"
	}
	style := successStyle
	switch s.Category {
	case analysis.BMIUnderweight, analysis.BMIOverweight:
		style = warningStyle
	case analysis.BMIObese:
		style = errorStyle
	}
	return fmt.Sprintf("%.1f ", s.BMI) + style.Render(string(s.Category))
}

func orDash(ok bool, s string) string {
	if !ok {
		return "-"
	}
	return s
}
