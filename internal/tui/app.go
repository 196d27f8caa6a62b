package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vitals/internal/service"
)

// Screen identifiers
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenChart
	ScreenReadings
	ScreenProfile
	ScreenSync
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	dashboard  DashboardModel
	chart      ChartModel
	readings   ReadingsModel
	profile    ProfileModel
	syncScreen SyncModel
	help       HelpModel

	queryService *service.QueryService
	units        Units
	exportDir    string

	width  int
	height int
}

// Options carries the non-service dependencies of the App
type Options struct {
	Units     Units
	ExportDir string        // where exported SVG charts are written
	RateLimit RateLimitFunc // optional
}

// NewApp creates a new App with all dependencies
func NewApp(syncService *service.SyncService, queryService *service.QueryService, opts Options) *App {
	return &App{
		screen:       ScreenDashboard,
		queryService: queryService,
		units:        opts.Units,
		exportDir:    opts.ExportDir,
		dashboard:    NewDashboardModel(queryService, opts.Units, 0),
		chart:        NewChartModel(queryService, opts.Units, opts.ExportDir, 0),
		readings:     NewReadingsModel(queryService, opts.Units, 0, 0),
		profile:      NewProfileModel(queryService, opts.Units),
		syncScreen:   NewSyncModel(syncService, opts.RateLimit),
		help:         NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			a.syncScreen.Stop()
			return a, tea.Quit
		}
		// Navigation is disabled while a sync is running
		if a.screen != ScreenSync || !a.syncScreen.syncing {
			switch msg.String() {
			case "1":
				a.screen = ScreenDashboard
				a.dashboard = NewDashboardModel(a.queryService, a.units, a.width)
				return a, a.dashboard.Init()
			case "2":
				a.screen = ScreenChart
				return a, a.chart.Init()
			case "3":
				a.screen = ScreenReadings
				return a, a.readings.Init()
			case "4":
				a.screen = ScreenProfile
				return a, a.profile.Init()
			case "5", "s":
				if a.screen != ScreenSync {
					a.screen = ScreenSync
					return a, a.syncScreen.Init()
				}
				// 's' on the sync screen starts a sync
			case "?":
				a.prevScreen = a.screen
				a.screen = ScreenHelp
				return a, nil
			case "esc":
				if a.screen == ScreenHelp {
					a.screen = a.prevScreen
					return a, nil
				}
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Size-dependent screens track the window even when hidden
		var m tea.Model
		m, _ = a.chart.Update(msg)
		a.chart = m.(ChartModel)
		m, _ = a.readings.Update(msg)
		a.readings = m.(ReadingsModel)
		m, _ = a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
		return a, nil

	case SyncCompleteMsg:
		// Keep the sync summary on screen; refresh the dashboard behind it
		a.dashboard = NewDashboardModel(a.queryService, a.units, a.width)
		return a, a.dashboard.Init()

	case dashboardDataMsg:
		m, cmd := a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
		return a, cmd

	case tea.MouseMsg:
		// Screens lay out from their own first row
		msg.Y -= a.chromeHeight()
		return a.delegate(msg)
	}

	return a.delegate(msg)
}

// delegate passes msg to the current screen
func (a *App) delegate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var m tea.Model
	switch a.screen {
	case ScreenDashboard:
		m, cmd = a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
	case ScreenChart:
		m, cmd = a.chart.Update(msg)
		a.chart = m.(ChartModel)
	case ScreenReadings:
		m, cmd = a.readings.Update(msg)
		a.readings = m.(ReadingsModel)
	case ScreenProfile:
		m, cmd = a.profile.Update(msg)
		a.profile = m.(ProfileModel)
	case ScreenSync:
		m, cmd = a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
	case ScreenHelp:
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenChart:
		content = a.chart.View()
	case ScreenReadings:
		content = a.readings.View()
	case ScreenProfile:
		content = a.profile.View()
	case ScreenSync:
		content = a.syncScreen.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, headerStyle.Render("vitals"), a.renderNav(), content)
}

// chromeHeight is the number of rows above the current screen's content
func (a *App) chromeHeight() int {
	return lipgloss.Height(headerStyle.Render("vitals")) + lipgloss.Height(a.renderNav())
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Dashboard", ScreenDashboard},
		{"2", "Charts", ScreenChart},
		{"3", "Readings", ScreenReadings},
		{"4", "Profile", ScreenProfile},
		{"5", "Sync", ScreenSync},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

// SyncCompleteMsg is sent when sync finishes
type SyncCompleteMsg struct{}
