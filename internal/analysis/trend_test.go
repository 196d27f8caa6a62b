package analysis

import (
	"testing"
	"time"
)

// series builds readings oldest first, one hour apart, ending an hour before testNow
func series(values ...float64) []Reading {
	out := make([]Reading, len(values))
	for i, v := range values {
		out[i] = reading(v, time.Duration(len(values)-i)*time.Hour)
	}
	return out
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name     string
		readings []Reading
		days     int
		want     Trend
	}{
		{"empty", nil, 7, TrendStable},
		{"single reading", series(100), 7, TrendStable},
		{"up 100 to 120", series(100, 100, 120, 120), 7, TrendUp},
		{"stable 100 to 103", series(100, 100, 103, 103), 7, TrendStable},
		{"down 100 to 90", series(100, 100, 90, 90), 7, TrendDown},
		{"exactly five percent is stable", series(100, 105), 7, TrendStable},
		{"just over five percent is up", series(100, 105.01), 7, TrendUp},
		// 3 readings: first half [100], second half [100, 130] -> mean 115
		{"odd count puts extra in second half", series(100, 100, 130), 7, TrendUp},
		{"zero window uses default", series(100, 100, 120, 120), 0, TrendUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyTrend(tt.readings, testNow, tt.days); got != tt.want {
				t.Errorf("ClassifyTrend() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyTrend_SortsBeforeSplitting(t *testing.T) {
	// Same data as "up" but handed over most recent first
	readings := series(100, 100, 120, 120)
	reversed := make([]Reading, len(readings))
	for i, r := range readings {
		reversed[len(readings)-1-i] = r
	}

	if got := ClassifyTrend(reversed, testNow, 7); got != TrendUp {
		t.Errorf("ClassifyTrend(desc order) = %v, want up", got)
	}
}

func TestClassifyTrend_IgnoresReadingsOutsideWindow(t *testing.T) {
	readings := []Reading{
		reading(50, 20*day), // would make it look like a strong uptrend
		reading(100, 2*day),
		reading(101, day),
	}

	if got := ClassifyTrend(readings, testNow, 7); got != TrendStable {
		t.Errorf("ClassifyTrend() = %v, want stable", got)
	}
	if got := ClassifyTrend(readings, testNow, 30); got != TrendUp {
		t.Errorf("ClassifyTrend(30d) = %v, want up", got)
	}
}

func TestTrendString(t *testing.T) {
	if TrendUp.String() != "up" || TrendDown.String() != "down" || TrendStable.String() != "stable" {
		t.Error("unexpected Trend.String values")
	}
	if TrendUp.Arrow() != "↑" || TrendDown.Arrow() != "↓" {
		t.Error("unexpected Trend.Arrow values")
	}
}
