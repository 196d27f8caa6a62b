package tui

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"vitals/internal/analysis"
	"vitals/internal/config"
)

const poundsPerKg = 2.20462

// Units provides unit conversion and formatting based on user preferences
type Units struct {
	cfg config.DisplayConfig
}

// NewUnits creates a new Units helper with the given display config
func NewUnits(cfg config.DisplayConfig) Units {
	return Units{cfg: cfg}
}

// IsPounds returns true if weights display in pounds
func (u Units) IsPounds() bool {
	return u.cfg.WeightUnit == "lb"
}

// Label returns the display unit for a metric
func (u Units) Label(metric analysis.Metric) string {
	if metric == analysis.MetricWeight && u.IsPounds() {
		return "lb"
	}
	return analysis.MetricUnits[metric]
}

// Convert converts a canonical value into the display unit
func (u Units) Convert(metric analysis.Metric, v float64) float64 {
	if metric == analysis.MetricWeight && u.IsPounds() {
		return v * poundsPerKg
	}
	return v
}

// ConvertSeries converts a series of canonical values for charts
func (u Units) ConvertSeries(metric analysis.Metric, values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = u.Convert(metric, v)
	}
	return out
}

// FormatValue formats a canonical value with its display unit
func (u Units) FormatValue(metric analysis.Metric, v float64) string {
	v = u.Convert(metric, v)
	switch metric {
	case analysis.MetricWeight:
		return fmt.Sprintf("%.1f %s", v, u.Label(metric))
	case analysis.MetricSteps:
		return humanize.Comma(int64(math.Round(v))) + " steps"
	default:
		return fmt.Sprintf("%.0f %s", math.Round(v), u.Label(metric))
	}
}

// FormatComposite formats a blood pressure pair
func (u Units) FormatComposite(bp analysis.BloodPressure) string {
	return fmt.Sprintf("%.0f/%.0f mmHg", math.Round(bp.Systolic), math.Round(bp.Diastolic))
}

// FormatReading formats a reading, using systolic/diastolic when present
func (u Units) FormatReading(r analysis.Reading) string {
	if bp, ok := r.BloodPressure(); ok {
		return u.FormatComposite(bp)
	}
	return u.FormatValue(r.Metric, r.Value)
}

// FormatLast formats the latest value in a Statistics, or "-" if empty
func (u Units) FormatLast(metric analysis.Metric, s analysis.Statistics) string {
	if s.LastComposite != nil {
		return u.FormatComposite(*s.LastComposite)
	}
	if s.LastValue == nil {
		return "-"
	}
	return u.FormatValue(metric, *s.LastValue)
}

// FormatAverage formats the window average in a Statistics, or "-" if empty
func (u Units) FormatAverage(metric analysis.Metric, s analysis.Statistics) string {
	if s.WindowAverageComposite != nil {
		return u.FormatComposite(*s.WindowAverageComposite)
	}
	if s.WindowAverage == nil {
		return "-"
	}
	return u.FormatValue(metric, *s.WindowAverage)
}

// FormatWeight formats a weight in kilograms
func (u Units) FormatWeight(kg float64) string {
	return u.FormatValue(analysis.MetricWeight, kg)
}

// FormatAgo formats t relative to now, e.g. "3 minutes ago"
func FormatAgo(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
