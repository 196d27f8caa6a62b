package remote

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrMalformedValue is returned when a reading's value is not a finite number
var ErrMalformedValue = errors.New("malformed reading value")

// Reading is a health reading as stored in the remote readings table
type Reading struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Metric     string          `json:"metric"`
	Value      json.RawMessage `json:"value"` // number or numeric string
	Unit       string          `json:"unit"`
	RecordedAt time.Time       `json:"recorded_at"`
	Metadata   map[string]any  `json:"metadata"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NumericValue parses the raw value. Numbers and numeric strings are accepted.
func (r Reading) NumericValue() (float64, error) {
	raw := bytes.TrimSpace(r.Value)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("%w: missing", ErrMalformedValue)
	}

	var v float64
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrMalformedValue, err)
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMalformedValue, s)
		}
		v = parsed
	} else if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrMalformedValue, raw)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %v", ErrMalformedValue, v)
	}
	return v, nil
}

// ValidID reports whether the reading carries a well-formed UUID
func (r Reading) ValidID() bool {
	_, err := uuid.Parse(r.ID)
	return err == nil
}
