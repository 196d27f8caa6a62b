package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"vitals/internal/analysis"
	"vitals/internal/service"
)

// RateLimitFunc reports the remaining request budget and when it resets
type RateLimitFunc func() (remaining int, resetsAt time.Time)

// SyncModel is the sync screen model
type SyncModel struct {
	syncService *service.SyncService
	rateLimit   RateLimitFunc

	syncing  bool
	done     bool
	progress service.SyncProgress
	result   *service.SyncResult
	err      error

	updates <-chan service.SyncProgress
	results <-chan SyncDoneMsg
	cancel  context.CancelFunc
}

// NewSyncModel creates a new sync model. rateLimit may be nil.
func NewSyncModel(ss *service.SyncService, rateLimit RateLimitFunc) SyncModel {
	return SyncModel{
		syncService: ss,
		rateLimit:   rateLimit,
	}
}

// Init initializes the sync screen
func (m SyncModel) Init() tea.Cmd {
	return nil
}

// SyncDoneMsg is sent when sync finishes
type SyncDoneMsg struct {
	Result *service.SyncResult
	Err    error
}

type syncProgressMsg struct {
	progress service.SyncProgress
}

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case syncProgressMsg:
		m.progress = msg.progress
		return m, waitForSync(m.updates, m.results)

	case SyncDoneMsg:
		m.syncing = false
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		m.updates, m.results = nil, nil
		m.Stop()
		m.cancel = nil
		return m, func() tea.Msg { return SyncCompleteMsg{} }

	case tea.KeyMsg:
		if m.syncing {
			if msg.String() == "esc" {
				m.Stop()
			}
			return m, nil
		}
		switch msg.String() {
		case "enter", "s":
			return m.start()
		}
	}
	return m, nil
}

// Stop cancels a running sync. The result still arrives as a SyncDoneMsg.
func (m SyncModel) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// start launches SyncAll and streams its progress back as messages
func (m SyncModel) start() (SyncModel, tea.Cmd) {
	updates := make(chan service.SyncProgress, 16)
	results := make(chan SyncDoneMsg, 1)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		result, err := m.syncService.SyncAll(ctx, updates)
		results <- SyncDoneMsg{Result: result, Err: err}
	}()

	m.syncing = true
	m.done = false
	m.err = nil
	m.result = nil
	m.progress = service.SyncProgress{}
	m.updates = updates
	m.results = results
	m.cancel = cancel
	return m, waitForSync(updates, results)
}

// waitForSync delivers the next progress update, then the final result once
// the progress channel is closed
func waitForSync(updates <-chan service.SyncProgress, results <-chan SyncDoneMsg) tea.Cmd {
	return func() tea.Msg {
		if p, ok := <-updates; ok {
			return syncProgressMsg{progress: p}
		}
		return <-results
	}
}

// View renders the sync screen
func (m SyncModel) View() string {
	sections := []string{cardTitleStyle.Render("Sync Readings")}

	switch {
	case m.syncing:
		sections = append(sections, m.renderProgress())
	case m.done && m.err != nil:
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press 's' or Enter to retry"))
	case m.done:
		sections = append(sections, successStyle.Render("\n  Sync complete!"))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press '1' to go to dashboard"))
	default:
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderStartPrompt() string {
	lines := []string{
		"",
		"  Pull new readings from your health data store into the local cache.",
		"  Only readings newer than the last sync are downloaded.",
		"",
	}

	if m.rateLimit != nil {
		remaining, resetsAt := m.rateLimit()
		lines = append(lines, statusStyle.Render(fmt.Sprintf("  API budget: %s requests, resets %s",
			humanize.Comma(int64(remaining)), humanize.Time(resetsAt))))
	}
	lines = append(lines, "", statusStyle.Render("  Press 's' or Enter to start sync"))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderProgress() string {
	p := m.progress
	lines := []string{"", "  Syncing...  " + mutedStyle.Render("(esc: cancel)")}

	if p.Total > 0 {
		done := p.Index - 1
		if p.Completed {
			done = p.Index
		}
		lines = append(lines, "",
			"  "+RenderProgressBar(float64(done)/float64(p.Total), 30)+fmt.Sprintf("  %d/%d metrics", done, p.Total),
			"",
			fmt.Sprintf("  %s: %s fetched", p.Metric.Label(), humanize.Comma(int64(p.Fetched))))
	}

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderSummary() string {
	r := m.result
	if r == nil {
		return ""
	}

	lines := []string{""}
	if r.ReadingsStored > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %s readings synced", humanize.Comma(int64(r.ReadingsStored)))))
		for _, metric := range sortedMetrics(r) {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("    %-16s %d", metric.Label(), r.PerMetric[metric])))
		}
	} else {
		lines = append(lines, statusStyle.Render("  No new readings"))
	}

	if r.ReadingsSkipped > 0 {
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d malformed readings skipped (see log)", r.ReadingsSkipped)))
	}
	if len(r.Errors) > 0 {
		lines = append(lines, "", warningStyle.Render(fmt.Sprintf("  %d errors occurred", len(r.Errors))))
		for _, err := range r.Errors {
			lines = append(lines, mutedStyle.Render("    "+err.Error()))
		}
	}

	return strings.Join(lines, "\n")
}

// sortedMetrics returns the metrics with stored readings in dashboard order
func sortedMetrics(r *service.SyncResult) []analysis.Metric {
	var metrics []analysis.Metric
	for _, m := range analysis.AllMetrics {
		if r.PerMetric[m] > 0 {
			metrics = append(metrics, m)
		}
	}
	return metrics
}
