package analysis

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"time"
)

// Metric identifies the kind of health observation a reading holds
type Metric string

const (
	MetricBloodSugar    Metric = "blood_sugar"
	MetricBloodPressure Metric = "blood_pressure"
	MetricWeight        Metric = "weight"
	MetricHeartRate     Metric = "heart_rate"
	MetricSteps         Metric = "steps"
)

// AllMetrics lists the metrics in dashboard order
var AllMetrics = []Metric{
	MetricBloodSugar,
	MetricBloodPressure,
	MetricWeight,
	MetricHeartRate,
	MetricSteps,
}

// MetricUnits maps metrics to their canonical display units
var MetricUnits = map[Metric]string{
	MetricBloodSugar:    "mg/dL",
	MetricBloodPressure: "mmHg",
	MetricWeight:        "kg",
	MetricHeartRate:     "bpm",
	MetricSteps:         "steps",
}

// Label returns a human-readable metric name
func (m Metric) Label() string {
	switch m {
	case MetricBloodSugar:
		return "Blood Sugar"
	case MetricBloodPressure:
		return "Blood Pressure"
	case MetricWeight:
		return "Weight"
	case MetricHeartRate:
		return "Heart Rate"
	case MetricSteps:
		return "Steps"
	default:
		return string(m)
	}
}

// IsValidMetric reports whether s names a known metric
func IsValidMetric(s string) bool {
	for _, m := range AllMetrics {
		if string(m) == s {
			return true
		}
	}
	return false
}

// Metadata keys for composite blood pressure readings
const (
	MetaSystolic  = "systolic"
	MetaDiastolic = "diastolic"
)

// Reading is a single timestamped observation
type Reading struct {
	ID        string
	Metric    Metric
	Value     float64
	Unit      string
	Timestamp time.Time
	Metadata  map[string]any
}

// BloodPressure is the composite value stored on blood pressure readings
type BloodPressure struct {
	Systolic  float64
	Diastolic float64
}

// BloodPressure extracts the systolic/diastolic pair from metadata.
// Returns false if either field is missing or not numeric.
func (r Reading) BloodPressure() (BloodPressure, bool) {
	sys, ok := metaFloat(r.Metadata, MetaSystolic)
	if !ok {
		return BloodPressure{}, false
	}
	dia, ok := metaFloat(r.Metadata, MetaDiastolic)
	if !ok {
		return BloodPressure{}, false
	}
	return BloodPressure{Systolic: sys, Diastolic: dia}, true
}

func metaFloat(meta map[string]any, key string) (float64, bool) {
	raw, ok := meta[key]
	if !ok {
		return 0, false
	}

	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}

	if !isFinite(v) {
		return 0, false
	}
	return v, true
}

// SanitizeReadings returns a copy of readings without non-finite values.
// Callers are expected to run raw persistence records through this before
// handing them to the aggregators.
func SanitizeReadings(readings []Reading) []Reading {
	out := make([]Reading, 0, len(readings))
	for _, r := range readings {
		if isFinite(r.Value) {
			out = append(out, r)
		}
	}
	return out
}

// sortedFinite copies the series, drops non-finite values and orders it
// oldest first. The input slice is never modified.
func sortedFinite(readings []Reading) []Reading {
	out := make([]Reading, 0, len(readings))
	for _, r := range readings {
		if !isFinite(r.Value) {
			assertFinite(r.Value, "reading "+r.ID)
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// since returns readings with Timestamp >= cutoff from a chronologically sorted slice
func since(sorted []Reading, cutoff time.Time) []Reading {
	idx := sort.Search(len(sorted), func(i int) bool {
		return !sorted[i].Timestamp.Before(cutoff)
	})
	return sorted[idx:]
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
