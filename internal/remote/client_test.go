package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL+"/", "anon-key", oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}))
	c.rateLimiter = newRateLimiter(0, time.Now)
	return c
}

func TestListReadingsRequest(t *testing.T) {
	since := time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/readings", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "eq.weight", q.Get("metric"))
		assert.Equal(t, "gte.2026-03-01T08:00:00Z", q.Get("recorded_at"))
		assert.Equal(t, "recorded_at.asc", q.Get("order"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "20", q.Get("offset"))

		fmt.Fprint(w, `[
			{"id": "0f8fad5b-d9cb-469f-a165-70867728950e", "metric": "weight", "value": 72.4,
			 "unit": "kg", "recorded_at": "2026-03-02T07:15:00Z"},
			{"id": "7c9e6679-7425-40de-944b-e07fc1f90ae7", "metric": "weight", "value": "72.1",
			 "unit": "kg", "recorded_at": "2026-03-03T07:15:00Z", "metadata": {"note": "after run"}}
		]`)
	})

	readings, err := c.ListReadings(context.Background(), "weight", since, 10, 20)
	require.NoError(t, err)
	require.Len(t, readings, 2)

	v, err := readings[1].NumericValue()
	require.NoError(t, err)
	assert.Equal(t, 72.1, v)
	assert.Equal(t, "after run", readings[1].Metadata["note"])
	assert.True(t, readings[0].ValidID())
}

func TestListReadingsOmitsZeroSince(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.URL.Query()["recorded_at"]
		assert.False(t, ok)
		fmt.Fprint(w, `[]`)
	})

	readings, err := c.ListReadings(context.Background(), "steps", time.Time{}, PageSize, 0)
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestListAllReadingsPages(t *testing.T) {
	total := PageSize + 3
	var (
		mu      sync.Mutex
		offsets []int
	)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		mu.Lock()
		offsets = append(offsets, offset)
		mu.Unlock()

		var page []map[string]any
		for i := offset; i < total && i < offset+limit; i++ {
			page = append(page, map[string]any{
				"id":          fmt.Sprintf("r-%d", i),
				"metric":      "heart_rate",
				"value":       60 + i%20,
				"recorded_at": time.Date(2026, 1, 1, 0, i, 0, 0, time.UTC),
			})
		}
		assert.NoError(t, json.NewEncoder(w).Encode(page))
	})

	var progress []int
	readings, err := c.ListAllReadings(context.Background(), "heart_rate", time.Time{}, func(n int) {
		progress = append(progress, n)
	})
	require.NoError(t, err)
	assert.Len(t, readings, total)
	mu.Lock()
	assert.Equal(t, []int{0, PageSize}, offsets)
	mu.Unlock()
	assert.Equal(t, []int{PageSize, total}, progress)
}

func TestErrorResponses(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"JWT expired"}`, http.StatusUnauthorized)
		})
		_, err := c.ListReadings(context.Background(), "weight", time.Time{}, 10, 0)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("server error keeps body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "relation does not exist", http.StatusInternalServerError)
		})
		_, err := c.ListAllReadings(context.Background(), "weight", time.Time{}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API error 500")
		assert.Contains(t, err.Error(), "relation does not exist")
	})
}

func TestNumericValue(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{`98.6`, 98.6, false},
		{`120`, 120, false},
		{`"140.5"`, 140.5, false},
		{`" 7 "`, 7, false},
		{`"NaN"`, 0, true},
		{`"Inf"`, 0, true},
		{`"high"`, 0, true},
		{`null`, 0, true},
		{``, 0, true},
		{`{"systolic":120}`, 0, true},
		{`true`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Reading{Value: json.RawMessage(tt.raw)}.NumericValue()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidID(t *testing.T) {
	assert.True(t, Reading{ID: "0f8fad5b-d9cb-469f-a165-70867728950e"}.ValidID())
	assert.False(t, Reading{ID: "r-1"}.ValidID())
	assert.False(t, Reading{}.ValidID())
}
