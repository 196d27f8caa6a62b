package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitals/internal/analysis"
	"vitals/internal/config"
	"vitals/internal/store"
)

var queryNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newQueryService(t *testing.T, mutate func(*config.Config)) (*QueryService, *store.DB) {
	t.Helper()
	db := store.NewTestDB(t)
	cfg := config.DefaultConfig()
	cfg.Profile = config.ProfileConfig{HeightCm: 175, WeightKg: 70, Age: 30, Gender: "male", ActivityLevel: "moderately_active"}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewQueryService(db, &cfg), db
}

func seed(t *testing.T, db *store.DB, metric string, values []float64, start time.Time, step time.Duration) {
	t.Helper()
	for i, v := range values {
		require.NoError(t, db.UpsertReading(&store.Reading{
			ID:         fmt.Sprintf("%s-%02d", metric, i),
			Metric:     metric,
			Value:      v,
			Unit:       analysis.MetricUnits[analysis.Metric(metric)],
			RecordedAt: start.Add(time.Duration(i) * step),
		}))
	}
}

func TestMetricSummaryBloodSugar(t *testing.T) {
	q, db := newQueryService(t, nil)
	// One old reading outside the window, then three daily readings
	seed(t, db, "blood_sugar", []float64{200}, queryNow.AddDate(0, 0, -30), 0)
	require.NoError(t, db.UpsertReading(&store.Reading{ID: "bs-a", Metric: "blood_sugar", Value: 65, Unit: "mg/dL", RecordedAt: queryNow.AddDate(0, 0, -3)}))
	require.NoError(t, db.UpsertReading(&store.Reading{ID: "bs-b", Metric: "blood_sugar", Value: 90, Unit: "mg/dL", RecordedAt: queryNow.AddDate(0, 0, -2)}))
	require.NoError(t, db.UpsertReading(&store.Reading{ID: "bs-c", Metric: "blood_sugar", Value: 150, Unit: "mg/dL", RecordedAt: queryNow.AddDate(0, 0, -1)}))

	summary, err := q.MetricSummary(analysis.MetricBloodSugar, queryNow)
	require.NoError(t, err)

	require.NotNil(t, summary.Range)
	assert.Equal(t, analysis.Range{Low: 70, High: 140}, *summary.Range)
	assert.Equal(t, "mg/dL", summary.Unit)

	assert.Equal(t, 4, summary.Stats.TotalCount)
	assert.Equal(t, 3, summary.Stats.WindowCount)
	assert.True(t, summary.Stats.HasRange)
	assert.Equal(t, 33, summary.Stats.InRangePercent)
	require.NotNil(t, summary.Stats.LastValue)
	assert.Equal(t, 150.0, *summary.Stats.LastValue)
	require.NotNil(t, summary.Stats.WindowAverage)
	assert.InDelta(t, 101.6667, *summary.Stats.WindowAverage, 1e-3)

	// Chart is chronological with range colors
	require.Len(t, summary.Chart.Points, 4)
	assert.Equal(t, 200.0, summary.Chart.Points[0].Value)
	assert.Equal(t, ColorOutOfRange, summary.Chart.Points[0].Color)
	assert.Equal(t, ColorInRange, summary.Chart.Points[2].Color)
	assert.Equal(t, queryNow.AddDate(0, 0, -1).Local().Format(ChartLabelLayout), summary.Chart.Points[3].Label)

	// Recent is most recent first
	require.Len(t, summary.Recent, 4)
	assert.Equal(t, "bs-c", summary.Recent[0].ID)
}

func TestMetricSummaryCustomRange(t *testing.T) {
	q, db := newQueryService(t, func(c *config.Config) {
		c.Ranges.BloodSugarLow = 60
		c.Ranges.BloodSugarHigh = 100
	})
	seed(t, db, "blood_sugar", []float64{65, 90, 150}, queryNow.AddDate(0, 0, -3), 24*time.Hour)

	summary, err := q.MetricSummary(analysis.MetricBloodSugar, queryNow)
	require.NoError(t, err)
	assert.Equal(t, 67, summary.Stats.InRangePercent)
}

func TestMetricSummaryTrendAndChartLimit(t *testing.T) {
	q, db := newQueryService(t, func(c *config.Config) { c.Display.ChartPoints = 5 })
	values := []float64{70, 71, 72, 73, 74, 75, 76, 77, 78, 79, 80, 81}
	seed(t, db, "weight", values, queryNow.Add(-6*24*time.Hour), 12*time.Hour)

	summary, err := q.MetricSummary(analysis.MetricWeight, queryNow)
	require.NoError(t, err)

	assert.Equal(t, analysis.TrendUp, summary.Trend)
	assert.False(t, summary.Stats.HasRange)
	assert.Nil(t, summary.Range)

	require.Len(t, summary.Chart.Points, 5)
	assert.Equal(t, 77.0, summary.Chart.Points[0].Value)
	assert.Equal(t, 81.0, summary.Chart.Points[4].Value)
	assert.Empty(t, summary.Chart.Points[0].Color)
	assert.Len(t, summary.Recent, RecentReadingsLimit)
}

func TestMetricSummaryBloodPressureChartsSystolic(t *testing.T) {
	q, db := newQueryService(t, nil)
	require.NoError(t, db.UpsertReading(&store.Reading{
		ID: "bp-1", Metric: "blood_pressure", Value: 0, Unit: "mmHg",
		RecordedAt: queryNow.Add(-time.Hour),
		Metadata:   map[string]any{"systolic": 124, "diastolic": 81},
	}))

	summary, err := q.MetricSummary(analysis.MetricBloodPressure, queryNow)
	require.NoError(t, err)

	require.Len(t, summary.Chart.Points, 1)
	assert.Equal(t, 124.0, summary.Chart.Points[0].Value)
	require.NotNil(t, summary.Stats.LastComposite)
	assert.Equal(t, analysis.BloodPressure{Systolic: 124, Diastolic: 81}, *summary.Stats.LastComposite)
}

func TestDashboard(t *testing.T) {
	q, db := newQueryService(t, nil)
	seed(t, db, "steps", []float64{8000, 9500}, queryNow.AddDate(0, 0, -2), 24*time.Hour)
	require.NoError(t, db.SetSyncState(LastSyncKey, "2026-03-15T11:30:00Z"))

	data, err := q.Dashboard(queryNow)
	require.NoError(t, err)

	require.Len(t, data.Summaries, len(analysis.AllMetrics))
	for i, m := range analysis.AllMetrics {
		assert.Equal(t, m, data.Summaries[i].Metric)
	}
	assert.Equal(t, 2, data.Summaries[4].Stats.TotalCount)
	assert.Zero(t, data.Summaries[0].Stats.TotalCount)
	assert.Empty(t, data.Summaries[0].Chart.Points)

	require.Len(t, data.Counts, 1)
	assert.Equal(t, "steps", data.Counts[0].Metric)
	assert.True(t, data.LastSync.Equal(queryNow.Add(-30*time.Minute)), "LastSync = %v", data.LastSync)
	assert.Equal(t, queryNow, data.GeneratedAt)
}

func TestProfileSummary(t *testing.T) {
	t.Run("configured weight", func(t *testing.T) {
		q, _ := newQueryService(t, nil)
		s, err := q.ProfileSummary()
		require.NoError(t, err)

		assert.False(t, s.WeightFromReading)
		assert.True(t, s.HasBMI)
		assert.Equal(t, 22.9, s.BMI)
		assert.Equal(t, analysis.BMINormal, s.Category)
		assert.Equal(t, 2556, s.TargetCalories)
		assert.True(t, s.HasHealthyRange)
		assert.Equal(t, 56.7, s.HealthyLowKg)
		assert.Equal(t, 76.3, s.HealthyHighKg)
	})

	t.Run("latest weight reading wins", func(t *testing.T) {
		q, db := newQueryService(t, nil)
		seed(t, db, "weight", []float64{90, 95}, queryNow.AddDate(0, 0, -2), 24*time.Hour)

		s, err := q.ProfileSummary()
		require.NoError(t, err)
		assert.True(t, s.WeightFromReading)
		assert.Equal(t, 95.0, s.Profile.WeightKg)
		assert.Equal(t, 31.0, s.BMI)
		assert.Equal(t, analysis.BMIObese, s.Category)
	})

	t.Run("missing height", func(t *testing.T) {
		q, _ := newQueryService(t, func(c *config.Config) { c.Profile = config.ProfileConfig{} })
		s, err := q.ProfileSummary()
		require.NoError(t, err)
		assert.False(t, s.HasBMI)
		assert.False(t, s.HasHealthyRange)
		assert.Equal(t, analysis.DefaultCalories, s.TargetCalories)
	})
}

func TestReadings(t *testing.T) {
	q, db := newQueryService(t, nil)
	seed(t, db, "heart_rate", []float64{60, 62, 64}, queryNow.Add(-3*time.Hour), time.Hour)

	got, err := q.Readings(analysis.MetricHeartRate, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 64.0, got[0].Value)
	assert.Equal(t, analysis.MetricHeartRate, got[0].Metric)

	all, err := q.Readings(analysis.MetricHeartRate, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
