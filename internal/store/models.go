package store

import "time"

// Auth represents OAuth tokens for the remote data store
type Auth struct {
	UserID       string    `db:"user_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// Reading is a cached health observation
type Reading struct {
	ID              string         `db:"id"` // remote UUID
	Metric          string         `db:"metric"`
	Value           float64        `db:"value"`
	Unit            string         `db:"unit"`
	RecordedAt      time.Time      `db:"recorded_at"`
	Metadata        map[string]any `db:"metadata"` // JSON, e.g. systolic/diastolic
	RemoteUpdatedAt time.Time      `db:"remote_updated_at"`
}

// MetricCount is the number of cached readings for a metric
type MetricCount struct {
	Metric string
	Count  int
	Latest time.Time
}
