package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const messageColumns = `id, group_name, sender, text, timestamp, is_reply, replied_to_text, replied_to_sender, sent_at, scraped_at, coalesce(length(picture), 0) > 0`

// InsertMessageIfAbsent stores a scraped message unless the same
// (group, sender, text, timestamp) tuple is already present. created reports
// whether a row was written.
func (db *DB) InsertMessageIfAbsent(m *Message) (created bool, err error) {
	if m.GroupName == "" || m.Sender == "" || m.Timestamp == "" {
		return false, fmt.Errorf("message identity incomplete: %w", ErrInvalid)
	}
	scraped := m.ScrapedAt
	if scraped.IsZero() {
		scraped = time.Now()
	}
	res, err := db.Exec(`
		INSERT INTO messages (group_name, sender, text, timestamp, picture, is_reply, replied_to_text, replied_to_sender, sent_at, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(group_name, sender, text, timestamp) DO NOTHING`,
		m.GroupName, m.Sender, m.Text, m.Timestamp, m.Picture, m.IsReply, m.RepliedToText, m.RepliedToSender,
		toMillis(m.SentAt), scraped.UnixMilli())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if id, err := res.LastInsertId(); err == nil {
		m.ID = id
	}
	return true, nil
}

// QueryMessages lists messages matching the filter. Pictures are not loaded;
// use GetPicture for the rows that need them.
func (db *DB) QueryMessages(f MessageFilter) ([]Message, error) {
	var (
		where []string
		args  []any
	)
	if f.AfterID > 0 {
		where = append(where, "id > ?")
		args = append(args, f.AfterID)
	}
	if f.Group != "" {
		where = append(where, "group_name = ?")
		args = append(args, f.Group)
	}
	if f.RepliesOnly {
		where = append(where, "is_reply = 1")
	}
	if f.RepliedTo != "" {
		where = append(where, "replied_to_sender LIKE ?")
		args = append(args, "%"+f.RepliedTo+"%")
	}
	if f.WithPicture {
		where = append(where, "length(picture) > 0")
	}

	q := `SELECT ` + messageColumns + ` FROM messages`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	switch f.Order {
	case NewestFirst:
		q += " ORDER BY CASE WHEN sent_at > 0 THEN sent_at ELSE scraped_at END DESC, id DESC"
	default:
		q += " ORDER BY id ASC"
	}
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// GetPicture returns the picture stored with a message, or nil if it has none.
func (db *DB) GetPicture(id int64) ([]byte, error) {
	var pic []byte
	err := db.QueryRow(`SELECT picture FROM messages WHERE id = ?`, id).Scan(&pic)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("message %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return pic, nil
}

// MessageCount returns the total number of stored messages.
func (db *DB) MessageCount() (int64, error) {
	var count int64
	err := db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

func scanMessage(rows *sql.Rows) (Message, error) {
	var m Message
	var sent, scraped int64
	err := rows.Scan(&m.ID, &m.GroupName, &m.Sender, &m.Text, &m.Timestamp, &m.IsReply,
		&m.RepliedToText, &m.RepliedToSender, &sent, &scraped, &m.HasPicture)
	m.SentAt = fromMillis(sent)
	m.ScrapedAt = fromMillis(scraped)
	return m, err
}
