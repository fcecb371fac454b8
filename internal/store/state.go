package store

import (
	"database/sql"
	"strconv"
	"time"
)

// SetCursor persists a loop's high-water mark under key.
func (db *DB) SetCursor(key string, value int64) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO agent_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, strconv.FormatInt(value, 10), now)
	return err
}

// GetCursor returns the stored high-water mark for key, or 0 if none.
func (db *DB) GetCursor(key string) (int64, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM agent_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(value, 10, 64)
}
