package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"vitals/internal/analysis"
	"vitals/internal/remote"
	"vitals/internal/store"
)

// RemoteClient is the subset of the remote store API used by sync
type RemoteClient interface {
	ListAllReadings(ctx context.Context, metric string, since time.Time, onProgress func(fetched int)) ([]remote.Reading, error)
}

// SyncService pulls readings from the remote store into the local cache
type SyncService struct {
	client  RemoteClient
	store   *store.DB
	metrics []analysis.Metric
	now     func() time.Time
}

// NewSyncService creates a sync service covering every known metric
func NewSyncService(client RemoteClient, store *store.DB) *SyncService {
	return &SyncService{
		client:  client,
		store:   store,
		metrics: analysis.AllMetrics,
		now:     time.Now,
	}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Metric    analysis.Metric
	Index     int // 1-based metric position
	Total     int // metric count
	Fetched   int
	Stored    int
	Skipped   int
	Completed bool // this metric is done
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	ReadingsFetched int
	ReadingsStored  int
	ReadingsSkipped int
	PerMetric       map[analysis.Metric]int // stored per metric
	Errors          []error
}

// Err combines the per-metric errors, or nil if every metric synced
func (r *SyncResult) Err() error {
	return multierr.Combine(r.Errors...)
}

// SyncAll performs an incremental sync of every metric. A failing metric is
// recorded in the result and the rest still sync. Authorization failures and
// cancellation abort the whole run. progress is closed on return.
func (s *SyncService) SyncAll(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &SyncResult{PerMetric: make(map[analysis.Metric]int)}

	for i, metric := range s.metrics {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		p := SyncProgress{Metric: metric, Index: i + 1, Total: len(s.metrics)}
		if err := s.syncMetric(ctx, metric, &p, progress, result); err != nil {
			if errors.Is(err, remote.ErrUnauthorized) || ctx.Err() != nil {
				return result, fmt.Errorf("syncing %s: %w", metric, err)
			}
			log.WithField("metric", metric).Errorf("sync failed: %s", err)
			result.Errors = append(result.Errors, fmt.Errorf("syncing %s: %w", metric, err))
		}

		p.Completed = true
		s.report(ctx, progress, p)
	}

	if err := s.store.SetSyncTime(LastSyncKey, s.now()); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("recording sync time: %w", err))
	}

	log.Infof("sync finished: fetched %d, stored %d, skipped %d, errors %d",
		result.ReadingsFetched, result.ReadingsStored, result.ReadingsSkipped, len(result.Errors))
	return result, nil
}

// syncMetric fetches readings newer than the metric's cursor and caches them
func (s *SyncService) syncMetric(ctx context.Context, metric analysis.Metric, p *SyncProgress, progress chan<- SyncProgress, result *SyncResult) error {
	cursorKey := SyncCursorPrefix + string(metric)
	since, err := s.cursor(cursorKey)
	if err != nil {
		return err
	}

	readings, err := s.client.ListAllReadings(ctx, string(metric), since, func(fetched int) {
		p.Fetched = fetched
		s.report(ctx, progress, *p)
	})
	if err != nil {
		return fmt.Errorf("fetching readings: %w", err)
	}
	p.Fetched = len(readings)
	result.ReadingsFetched += len(readings)

	// The cursor never passes a reading that failed to store; the remote
	// filter is inclusive, so the next run fetches it again.
	newest := since
	var failedAt time.Time
	for _, r := range readings {
		reading, err := convertReading(r, metric)
		if err != nil {
			result.ReadingsSkipped++
			p.Skipped++
			log.WithFields(log.Fields{"metric": metric, "id": r.ID}).Warnf("skipping reading: %s", err)
			continue
		}

		if err := s.store.UpsertReading(reading); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("storing reading %s: %w", r.ID, err))
			if failedAt.IsZero() || reading.RecordedAt.Before(failedAt) {
				failedAt = reading.RecordedAt
			}
			continue
		}
		result.ReadingsStored++
		result.PerMetric[metric]++
		p.Stored++

		if reading.RecordedAt.After(newest) {
			newest = reading.RecordedAt
		}
	}

	if !failedAt.IsZero() && newest.After(failedAt) {
		newest = failedAt
	}
	if newest.After(since) {
		if err := s.store.SetSyncTime(cursorKey, newest); err != nil {
			return fmt.Errorf("advancing cursor: %w", err)
		}
	}

	return nil
}

// cursor returns the stored sync position for key, or the zero time
func (s *SyncService) cursor(key string) (time.Time, error) {
	t, err := s.store.SyncTime(key)
	if errors.Is(err, store.ErrCorruptSyncState) {
		log.Warnf("%s, resyncing from the start", err)
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading %s: %w", key, err)
	}
	return t, nil
}

func (s *SyncService) report(ctx context.Context, progress chan<- SyncProgress, p SyncProgress) {
	if progress == nil {
		return
	}
	select {
	case progress <- p:
	case <-ctx.Done():
	}
}

// convertReading validates a remote reading and converts it to the cache model
func convertReading(r remote.Reading, metric analysis.Metric) (*store.Reading, error) {
	if !r.ValidID() {
		return nil, fmt.Errorf("invalid id %q", r.ID)
	}
	if r.Metric != string(metric) {
		return nil, fmt.Errorf("metric %q does not match %q", r.Metric, metric)
	}
	if r.RecordedAt.IsZero() {
		return nil, errors.New("missing recorded_at")
	}

	value, err := r.NumericValue()
	if err != nil {
		return nil, err
	}

	unit := r.Unit
	if unit == "" {
		unit = analysis.MetricUnits[metric]
	}

	return &store.Reading{
		ID:              r.ID,
		Metric:          r.Metric,
		Value:           value,
		Unit:            unit,
		RecordedAt:      r.RecordedAt,
		Metadata:        r.Metadata,
		RemoteUpdatedAt: r.UpdatedAt,
	}, nil
}
