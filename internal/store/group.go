package store

import (
	"fmt"
	"strings"
	"time"
)

// InsertGroup adds a monitored group. Returns ErrDuplicateKey if the name is
// already monitored.
func (db *DB) InsertGroup(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("group name: %w", ErrInvalid)
	}
	_, err := db.Exec(`INSERT INTO groups (name, created_at) VALUES (?, ?)`, name, time.Now().UnixMilli())
	if isUniqueViolation(err) {
		return fmt.Errorf("group %q: %w", name, ErrDuplicateKey)
	}
	return err
}

// DeleteGroup stops monitoring a group. Deleting an unknown group is a no-op.
// Messages already scraped from it are kept.
func (db *DB) DeleteGroup(name string) error {
	_, err := db.Exec(`DELETE FROM groups WHERE name = ?`, strings.TrimSpace(name))
	return err
}

// ListGroups returns monitored groups in configuration (insertion) order.
func (db *DB) ListGroups() ([]Group, error) {
	rows, err := db.Query(`SELECT id, name, created_at FROM groups ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var groups []Group
	for rows.Next() {
		var g Group
		var created int64
		if err := rows.Scan(&g.ID, &g.Name, &created); err != nil {
			return nil, err
		}
		g.CreatedAt = fromMillis(created)
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func fromMillis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
