package store

import (
	"fmt"
	"strings"
	"time"
)

// InsertCallLog appends a call record. At least one of CustomerName or
// PhoneNumber, and non-empty Notes, are required.
func (db *DB) InsertCallLog(l *CallLog) error {
	l.CustomerName = strings.TrimSpace(l.CustomerName)
	l.PhoneNumber = strings.TrimSpace(l.PhoneNumber)
	if l.CustomerName == "" && l.PhoneNumber == "" {
		return fmt.Errorf("call log needs a name or phone number: %w", ErrInvalid)
	}
	if strings.TrimSpace(l.Notes) == "" {
		return fmt.Errorf("call log notes: %w", ErrInvalid)
	}
	if l.LoggedAt.IsZero() {
		l.LoggedAt = time.Now()
	}
	res, err := db.Exec(`
		INSERT INTO call_logs (customer_name, phone_number, notes, logged_at)
		VALUES (?, ?, ?, ?)`,
		l.CustomerName, l.PhoneNumber, l.Notes, l.LoggedAt.UnixMilli())
	if err != nil {
		return err
	}
	l.ID, err = res.LastInsertId()
	return err
}

// ListCallLogs returns call records, newest first.
func (db *DB) ListCallLogs() ([]CallLog, error) {
	rows, err := db.Query(`
		SELECT id, customer_name, phone_number, notes, logged_at
		FROM call_logs ORDER BY logged_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var logs []CallLog
	for rows.Next() {
		var l CallLog
		var logged int64
		if err := rows.Scan(&l.ID, &l.CustomerName, &l.PhoneNumber, &l.Notes, &logged); err != nil {
			return nil, err
		}
		l.LoggedAt = fromMillis(logged)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
