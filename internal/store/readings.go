package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// timeLayout is fixed width so recorded_at sorts lexicographically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// UpsertReading inserts or updates a reading by ID
func (db *DB) UpsertReading(r *Reading) error {
	meta, err := encodeMetadata(r.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata for %s: %w", r.ID, err)
	}

	var remoteUpdated sql.NullString
	if !r.RemoteUpdatedAt.IsZero() {
		remoteUpdated = sql.NullString{String: formatTime(r.RemoteUpdatedAt), Valid: true}
	}

	_, err = db.Exec(`
		INSERT INTO readings (id, metric, value, unit, recorded_at, metadata, remote_updated_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			metric = excluded.metric,
			value = excluded.value,
			unit = excluded.unit,
			recorded_at = excluded.recorded_at,
			metadata = excluded.metadata,
			remote_updated_at = excluded.remote_updated_at,
			updated_at = CURRENT_TIMESTAMP
	`, r.ID, r.Metric, r.Value, r.Unit, formatTime(r.RecordedAt), meta, remoteUpdated)
	return err
}

// GetReading retrieves a reading by ID
func (db *DB) GetReading(id string) (*Reading, error) {
	row := db.QueryRow(`
		SELECT id, metric, value, unit, recorded_at, metadata, remote_updated_at
		FROM readings
		WHERE id = ?
	`, id)

	r, err := scanReading(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReadingNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteReading removes a reading from the cache
func (db *DB) DeleteReading(id string) error {
	result, err := db.Exec(`DELETE FROM readings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrReadingNotFound
	}
	return nil
}

// ListReadings returns readings for a metric recorded at or after since,
// most recent first. A zero since returns the full history.
func (db *DB) ListReadings(metric string, since time.Time) ([]Reading, error) {
	rows, err := db.Query(`
		SELECT id, metric, value, unit, recorded_at, metadata, remote_updated_at
		FROM readings
		WHERE metric = ? AND recorded_at >= ?
		ORDER BY recorded_at DESC
	`, metric, formatTime(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReadings(rows)
}

// RecentReadings returns the most recent readings for a metric
func (db *DB) RecentReadings(metric string, limit int) ([]Reading, error) {
	rows, err := db.Query(`
		SELECT id, metric, value, unit, recorded_at, metadata, remote_updated_at
		FROM readings
		WHERE metric = ?
		ORDER BY recorded_at DESC
		LIMIT ?
	`, metric, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReadings(rows)
}

// CountReadings returns the number of cached readings for a metric
func (db *DB) CountReadings(metric string) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM readings WHERE metric = ?`, metric).Scan(&count)
	return count, err
}

// ReadingCounts returns per-metric counts and latest timestamps
func (db *DB) ReadingCounts() ([]MetricCount, error) {
	rows, err := db.Query(`
		SELECT metric, COUNT(*), MAX(recorded_at)
		FROM readings
		GROUP BY metric
		ORDER BY metric
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []MetricCount
	for rows.Next() {
		var c MetricCount
		var latest string
		if err := rows.Scan(&c.Metric, &c.Count, &latest); err != nil {
			return nil, err
		}
		c.Latest, _ = parseTime(latest)
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (*Reading, error) {
	var r Reading
	var recordedAt string
	var meta, remoteUpdated sql.NullString

	if err := row.Scan(&r.ID, &r.Metric, &r.Value, &r.Unit, &recordedAt, &meta, &remoteUpdated); err != nil {
		return nil, err
	}

	t, err := parseTime(recordedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing recorded_at for %s: %w", r.ID, err)
	}
	r.RecordedAt = t

	if remoteUpdated.Valid {
		r.RemoteUpdatedAt, _ = parseTime(remoteUpdated.String)
	}

	if meta.Valid && meta.String != "" {
		if err := json.Unmarshal([]byte(meta.String), &r.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata for %s: %w", r.ID, err)
		}
	}

	return &r, nil
}

func collectReadings(rows *sql.Rows) ([]Reading, error) {
	var readings []Reading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, *r)
	}
	return readings, rows.Err()
}

func encodeMetadata(meta map[string]any) (sql.NullString, error) {
	if len(meta) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
