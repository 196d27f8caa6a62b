package tui

import (
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitals/internal/analysis"
	"vitals/internal/config"
	"vitals/internal/service"
	"vitals/internal/store"
)

var chartDims = analysis.ChartDimensions{Width: 340, Height: 220, Padding: 20}

func loadedChart(t *testing.T, values ...float64) ChartModel {
	t.Helper()
	db := store.NewTestDB(t)
	start := time.Now().Add(-time.Duration(len(values)) * time.Hour)
	for i, v := range values {
		require.NoError(t, db.UpsertReading(&store.Reading{
			ID:         "bs-" + string(rune('a'+i)),
			Metric:     "blood_sugar",
			Value:      v,
			Unit:       "mg/dL",
			RecordedAt: start.Add(time.Duration(i) * time.Hour),
		}))
	}

	cfg := config.DefaultConfig()
	qs := service.NewQueryService(db, &cfg)
	m := NewChartModel(qs, NewUnits(cfg.Display), t.TempDir(), 100)

	updated, _ := m.Update(m.load())
	return updated.(ChartModel)
}

func click(m ChartModel, x, y int) ChartModel {
	updated, _ := m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	return updated.(ChartModel)
}

// plotRow returns a view row inside the plot
func plotRow(m ChartModel) int {
	return lipgloss.Height(m.title()) + plotHeight/2
}

func TestAxisColumn(t *testing.T) {
	assert.Equal(t, 6, axisColumn(" 10.0 ┤  ╭─\n  5.0 ┼──╯"))
	assert.Equal(t, 4, axisColumn("100 ┼───"))
	assert.Equal(t, 0, axisColumn("no axis"))
}

func TestChartXAndColumnFor(t *testing.T) {
	assert.Equal(t, 20.0, chartX(0, 81, chartDims))
	assert.Equal(t, 320.0, chartX(80, 81, chartDims))
	assert.Equal(t, 170.0, chartX(40, 81, chartDims))
	assert.Equal(t, 20.0, chartX(0, 1, chartDims))

	assert.Equal(t, 0, columnFor(0, 3, 81))
	assert.Equal(t, 40, columnFor(1, 3, 81))
	assert.Equal(t, 80, columnFor(2, 3, 81))
	assert.Equal(t, 0, columnFor(0, 1, 81))
}

func TestChartKeyboardSelection(t *testing.T) {
	m := loadedChart(t, 95, 180, 120)
	require.Equal(t, 3, m.pointCount())
	assert.Equal(t, 2, m.selected, "latest point is selected after load")

	press := func(k tea.KeyType) {
		updated, _ := m.Update(tea.KeyMsg{Type: k})
		m = updated.(ChartModel)
	}

	press(tea.KeyLeft)
	assert.Equal(t, 1, m.selected)
	press(tea.KeyLeft)
	press(tea.KeyLeft)
	assert.Equal(t, 0, m.selected, "selection stops at the first point")
	press(tea.KeyEnd)
	assert.Equal(t, 2, m.selected)
	press(tea.KeyRight)
	assert.Equal(t, 2, m.selected, "selection stops at the last point")

	assert.Contains(t, m.View(), "120 mg/dL")
}

func TestChartMouseSelection(t *testing.T) {
	m := loadedChart(t, 95, 180, 120)
	axis := axisColumn(m.plot())
	cols := m.plotColumns()

	row := plotRow(m)

	m = click(m, plotIndent+axis, row)
	assert.Equal(t, 0, m.selected)

	m = click(m, plotIndent+axis+cols/2, row)
	assert.Equal(t, 1, m.selected)

	m = click(m, plotIndent+axis+cols-1, row)
	assert.Equal(t, 2, m.selected)

	// Clicks left of the plot are ignored
	m = click(m, 0, row)
	assert.Equal(t, 2, m.selected)

	// Only left presses select
	updated, _ := m.Update(tea.MouseMsg{X: plotIndent + axis, Y: row, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	assert.Equal(t, 2, updated.(ChartModel).selected)
}

func TestChartClickOutsidePlotRows(t *testing.T) {
	m := loadedChart(t, 95, 180, 120)
	x := plotIndent + axisColumn(m.plot())
	top := lipgloss.Height(m.title())
	bottom := top + lipgloss.Height(m.plot()) // marker row

	for name, y := range map[string]int{
		"title":   0,
		"marker":  bottom,
		"tooltip": bottom + 1,
		"stats":   bottom + 3,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 2, click(m, x, y).selected)
		})
	}

	assert.Equal(t, 0, click(m, x, top).selected, "first plot row")
	assert.Equal(t, 0, click(m, x, bottom-1).selected, "last plot row")
}

func TestChartTooltipMarksOutOfRange(t *testing.T) {
	m := loadedChart(t, 95, 180)
	m.selected = 1
	tip := m.tooltip()
	assert.Contains(t, tip, "180 mg/dL")
	assert.Contains(t, tip, "(2/2)")
}

func TestChartCycleMetricAndEmpty(t *testing.T) {
	m := loadedChart(t, 95, 180)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	m = updated.(ChartModel)
	require.NotNil(t, cmd)
	assert.Equal(t, analysis.MetricBloodPressure, m.metric())

	updated, _ = m.Update(cmd())
	m = updated.(ChartModel)
	assert.Zero(t, m.pointCount())
	assert.Contains(t, m.View(), "No readings yet")

	_, ok := m.indexAt(10, plotRow(m))
	assert.False(t, ok)
}

func TestChartExport(t *testing.T) {
	m := loadedChart(t, 95, 180, 120)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	require.NotNil(t, cmd)
	msg, ok := cmd().(chartExportedMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	assert.True(t, strings.HasSuffix(msg.path, "blood_sugar.svg"))

	data, err := os.ReadFile(msg.path)
	require.NoError(t, err)
	assert.Contains(t, string(data), m.summary.Chart.LinePath)

	updated, _ := m.Update(msg)
	assert.Contains(t, updated.(ChartModel).status, "Saved")
}
