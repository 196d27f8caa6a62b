package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrCorruptSyncState is returned when a stored sync timestamp can't be parsed
var ErrCorruptSyncState = errors.New("corrupt sync state")

// GetSyncState returns the raw value for key, or "" if it was never set
func (db *DB) GetSyncState(key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM sync_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSyncState stores value under key
func (db *DB) SetSyncState(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO sync_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// SyncTime returns the timestamp stored under key. Unset keys give the zero time.
func (db *DB) SyncTime(key string) (time.Time, error) {
	value, err := db.GetSyncState(key)
	if err != nil || value == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s=%q", ErrCorruptSyncState, key, value)
	}
	return t, nil
}

// SetSyncTime stores t under key as UTC RFC3339 with nanoseconds
func (db *DB) SetSyncTime(key string, t time.Time) error {
	return db.SetSyncState(key, t.UTC().Format(time.RFC3339Nano))
}
