package analysis

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// StatsWindow is the trailing window used for dashboard counts and averages
const StatsWindow = 7 * 24 * time.Hour

// Range is an inclusive normal range for a metric
type Range struct {
	Low  float64
	High float64
}

// Contains reports whether v lies within the range, inclusive on both ends
func (r Range) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

// DefaultBloodSugarRange is the normal fasting/post-meal band in mg/dL
var DefaultBloodSugarRange = Range{Low: 70, High: 140}

// NormalRange returns the default normal range for a metric, if one is defined
func NormalRange(metric Metric) (Range, bool) {
	switch metric {
	case MetricBloodSugar:
		return DefaultBloodSugarRange, true
	default:
		return Range{}, false
	}
}

// Statistics summarizes a reading series for dashboard display
type Statistics struct {
	TotalCount     int
	WindowCount    int
	InRangePercent int  // 0 when the window is empty or no range applies
	HasRange       bool // whether InRangePercent is meaningful

	LastValue     *float64       // nil when the series is empty
	LastComposite *BloodPressure // nil unless the latest reading carries systolic/diastolic

	WindowAverage          *float64 // nil when the window is empty
	WindowAverageComposite *BloodPressure
}

// Aggregate reduces a reading series into summary statistics relative to now.
// normalRange may be nil for metrics without a target band.
func Aggregate(readings []Reading, now time.Time, normalRange *Range) Statistics {
	stats := Statistics{
		TotalCount: len(readings),
		HasRange:   normalRange != nil,
	}

	sorted := sortedFinite(readings)
	if len(sorted) == 0 {
		return stats
	}

	// Latest by timestamp; sortedFinite is stable so ties keep input order
	latest := sorted[len(sorted)-1]
	last := latest.Value
	stats.LastValue = &last
	if bp, ok := latest.BloodPressure(); ok {
		stats.LastComposite = &bp
	}

	window := since(sorted, now.Add(-StatsWindow))
	stats.WindowCount = len(window)
	if len(window) == 0 {
		return stats
	}

	if normalRange != nil {
		stats.InRangePercent = inRangePercent(window, *normalRange)
	}

	stats.WindowAverage = mean(window)
	stats.WindowAverageComposite = meanComposite(window)

	return stats
}

// Average returns the arithmetic mean of values recorded in [from, now].
// Returns nil when no readings fall in the window.
func Average(readings []Reading, from, now time.Time) *float64 {
	return mean(between(sortedFinite(readings), from, now))
}

// AverageComposite averages systolic and diastolic separately over [from, now]
func AverageComposite(readings []Reading, from, now time.Time) *BloodPressure {
	return meanComposite(between(sortedFinite(readings), from, now))
}

func between(sorted []Reading, from, to time.Time) []Reading {
	var out []Reading
	for _, r := range since(sorted, from) {
		if r.Timestamp.After(to) {
			break
		}
		out = append(out, r)
	}
	return out
}

func inRangePercent(window []Reading, rng Range) int {
	if len(window) == 0 {
		return 0
	}
	inRange := 0
	for _, r := range window {
		if rng.Contains(r.Value) {
			inRange++
		}
	}
	return int(math.Round(float64(inRange) / float64(len(window)) * 100))
}

func mean(readings []Reading) *float64 {
	if len(readings) == 0 {
		return nil
	}
	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = r.Value
	}
	avg := stat.Mean(values, nil)
	return &avg
}

func meanComposite(readings []Reading) *BloodPressure {
	var sys, dia []float64
	for _, r := range readings {
		if bp, ok := r.BloodPressure(); ok {
			sys = append(sys, bp.Systolic)
			dia = append(dia, bp.Diastolic)
		}
	}
	if len(sys) == 0 {
		return nil
	}
	return &BloodPressure{
		Systolic:  stat.Mean(sys, nil),
		Diastolic: stat.Mean(dia, nil),
	}
}
