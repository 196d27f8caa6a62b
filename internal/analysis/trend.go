package analysis

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultTrendWindowDays is the look-back used when no window is given
const DefaultTrendWindowDays = 7

// trendThreshold is the relative change needed before a trend is reported
const trendThreshold = 0.05

// Trend is the recent direction of a metric
type Trend int

const (
	TrendStable Trend = iota
	TrendUp
	TrendDown
)

func (t Trend) String() string {
	switch t {
	case TrendUp:
		return "up"
	case TrendDown:
		return "down"
	default:
		return "stable"
	}
}

// Arrow returns a compact glyph for the trend
func (t Trend) Arrow() string {
	switch t {
	case TrendUp:
		return "↑"
	case TrendDown:
		return "↓"
	default:
		return "→"
	}
}

// ClassifyTrend compares the mean of the earlier half of the window with the
// later half. A change larger than 5% of the earlier mean is Up or Down.
// Odd counts put the extra reading in the later half.
func ClassifyTrend(readings []Reading, now time.Time, windowDays int) Trend {
	if windowDays <= 0 {
		windowDays = DefaultTrendWindowDays
	}

	cutoff := now.Add(-time.Duration(windowDays) * 24 * time.Hour)
	window := since(sortedFinite(readings), cutoff)
	if len(window) < 2 {
		return TrendStable
	}

	values := make([]float64, len(window))
	for i, r := range window {
		values[i] = r.Value
	}

	mid := len(values) / 2
	firstMean := stat.Mean(values[:mid], nil)
	secondMean := stat.Mean(values[mid:], nil)

	difference := secondMean - firstMean
	threshold := firstMean * trendThreshold

	switch {
	case difference > threshold:
		return TrendUp
	case difference < -threshold:
		return TrendDown
	default:
		return TrendStable
	}
}
