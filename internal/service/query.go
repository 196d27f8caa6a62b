package service

import (
	"errors"
	"fmt"
	"time"

	"vitals/internal/analysis"
	"vitals/internal/config"
	"vitals/internal/store"
)

// QueryService provides read-only queries for the TUI
type QueryService struct {
	store       *store.DB
	profile     analysis.Profile
	ranges      map[analysis.Metric]analysis.Range
	dims        analysis.ChartDimensions
	chartPoints int
}

// NewQueryService creates a query service using the profile, ranges and chart
// settings from cfg
func NewQueryService(store *store.DB, cfg *config.Config) *QueryService {
	chartPoints := cfg.Display.ChartPoints
	if chartPoints <= 0 {
		chartPoints = DefaultChartPoints
	}

	ranges := make(map[analysis.Metric]analysis.Range)
	for _, m := range analysis.AllMetrics {
		if r, ok := analysis.NormalRange(m); ok {
			ranges[m] = r
		}
	}
	if cfg.Ranges.BloodSugarLow < cfg.Ranges.BloodSugarHigh {
		ranges[analysis.MetricBloodSugar] = analysis.Range{Low: cfg.Ranges.BloodSugarLow, High: cfg.Ranges.BloodSugarHigh}
	}

	return &QueryService{
		store: store,
		profile: analysis.Profile{
			HeightCm:      cfg.Profile.HeightCm,
			WeightKg:      cfg.Profile.WeightKg,
			Age:           cfg.Profile.Age,
			Gender:        cfg.Profile.Gender,
			ActivityLevel: cfg.Profile.ActivityLevel,
		},
		ranges: ranges,
		dims: analysis.ChartDimensions{
			Width:   float64(cfg.Display.ChartWidth),
			Height:  float64(cfg.Display.ChartHeight),
			Padding: float64(cfg.Display.ChartPadding),
		},
		chartPoints: chartPoints,
	}
}

// MetricSummary is everything the dashboard card and chart screen show for one metric
type MetricSummary struct {
	Metric analysis.Metric
	Unit   string
	Range  *analysis.Range // nil when the metric has no normal range

	Stats  analysis.Statistics
	Trend  analysis.Trend
	Chart  analysis.ChartGeometry
	Recent []analysis.Reading // most recent first
}

// DashboardData contains all data needed for the dashboard
type DashboardData struct {
	Summaries   []MetricSummary // in analysis.AllMetrics order
	Counts      []store.MetricCount
	LastSync    time.Time // zero if never synced
	GeneratedAt time.Time
}

// ProfileSummary contains the derived health indices for the profile screen
type ProfileSummary struct {
	Profile analysis.Profile

	// WeightFromReading is true when the weight came from the latest weight
	// reading rather than the configured profile
	WeightFromReading bool

	BMI             float64
	HasBMI          bool
	Category        analysis.BMICategory
	TargetCalories  int
	HealthyLowKg    float64
	HealthyHighKg   float64
	HasHealthyRange bool
}

// MetricSummary computes statistics, trend and chart geometry for one metric
func (q *QueryService) MetricSummary(metric analysis.Metric, now time.Time) (*MetricSummary, error) {
	stored, err := q.store.ListReadings(string(metric), time.Time{})
	if err != nil {
		return nil, fmt.Errorf("loading %s readings: %w", metric, err)
	}
	readings := toAnalysisReadings(stored)

	summary := &MetricSummary{
		Metric: metric,
		Unit:   analysis.MetricUnits[metric],
	}
	if r, ok := q.ranges[metric]; ok {
		summary.Range = &r
	}

	summary.Stats = analysis.Aggregate(readings, now, summary.Range)
	summary.Trend = analysis.ClassifyTrend(readings, now, analysis.DefaultTrendWindowDays)
	summary.Chart = analysis.BuildChart(q.chartData(readings, summary.Range), q.dims)

	if len(readings) > RecentReadingsLimit {
		summary.Recent = readings[:RecentReadingsLimit]
	} else {
		summary.Recent = readings
	}

	return summary, nil
}

// Dashboard builds summaries for every metric
func (q *QueryService) Dashboard(now time.Time) (*DashboardData, error) {
	data := &DashboardData{GeneratedAt: now}

	for _, m := range analysis.AllMetrics {
		summary, err := q.MetricSummary(m, now)
		if err != nil {
			return nil, err
		}
		data.Summaries = append(data.Summaries, *summary)
	}

	counts, err := q.store.ReadingCounts()
	if err != nil {
		return nil, fmt.Errorf("counting readings: %w", err)
	}
	data.Counts = counts

	// A corrupt value shows as "never"; the next sync overwrites it
	lastSync, err := q.store.SyncTime(LastSyncKey)
	if err != nil && !errors.Is(err, store.ErrCorruptSyncState) {
		return nil, fmt.Errorf("reading last sync: %w", err)
	}
	data.LastSync = lastSync

	return data, nil
}

// ProfileSummary computes BMI, calorie target and healthy weight range.
// The latest weight reading overrides the configured weight.
func (q *QueryService) ProfileSummary() (*ProfileSummary, error) {
	profile := q.profile

	summary := &ProfileSummary{}
	latest, err := q.store.RecentReadings(string(analysis.MetricWeight), 1)
	if err != nil {
		return nil, fmt.Errorf("loading latest weight: %w", err)
	}
	if len(latest) > 0 && latest[0].Value > 0 {
		profile.WeightKg = latest[0].Value
		summary.WeightFromReading = true
	}
	summary.Profile = profile

	summary.BMI, summary.HasBMI = analysis.BMI(profile.HeightCm, profile.WeightKg)
	if summary.HasBMI {
		summary.Category = analysis.CategorizeBMI(summary.BMI)
	}
	summary.TargetCalories = analysis.TargetCalories(profile)
	summary.HealthyLowKg, summary.HealthyHighKg, summary.HasHealthyRange = analysis.HealthyWeightRange(profile.HeightCm)

	return summary, nil
}

// Readings returns up to limit readings for a metric, most recent first
func (q *QueryService) Readings(metric analysis.Metric, limit int) ([]analysis.Reading, error) {
	if limit <= 0 {
		limit = ReadingsPageLimit
	}
	stored, err := q.store.RecentReadings(string(metric), limit)
	if err != nil {
		return nil, fmt.Errorf("loading %s readings: %w", metric, err)
	}
	return toAnalysisReadings(stored), nil
}

// Range returns the normal range in effect for metric
func (q *QueryService) Range(metric analysis.Metric) (analysis.Range, bool) {
	r, ok := q.ranges[metric]
	return r, ok
}

// ChartDimensions returns the configured chart size
func (q *QueryService) ChartDimensions() analysis.ChartDimensions {
	return q.dims
}

// chartData converts the newest readings into chronological chart points.
// readings must be most recent first.
func (q *QueryService) chartData(readings []analysis.Reading, rng *analysis.Range) []analysis.DataPoint {
	n := len(readings)
	if n > q.chartPoints {
		n = q.chartPoints
	}

	points := make([]analysis.DataPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		r := readings[i]
		value := r.Value
		if bp, ok := r.BloodPressure(); ok {
			value = bp.Systolic
		}

		dp := analysis.DataPoint{
			Value: value,
			Label: r.Timestamp.Local().Format(ChartLabelLayout),
		}
		if rng != nil {
			if rng.Contains(value) {
				dp.Color = ColorInRange
			} else {
				dp.Color = ColorOutOfRange
			}
		}
		points = append(points, dp)
	}
	return points
}

func toAnalysisReadings(stored []store.Reading) []analysis.Reading {
	readings := make([]analysis.Reading, len(stored))
	for i, r := range stored {
		readings[i] = analysis.Reading{
			ID:        r.ID,
			Metric:    analysis.Metric(r.Metric),
			Value:     r.Value,
			Unit:      r.Unit,
			Timestamp: r.RecordedAt,
			Metadata:  r.Metadata,
		}
	}
	return readings
}
