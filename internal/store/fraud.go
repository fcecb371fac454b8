package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ebosoh/sales-agent/internal/phone"
)

// Community is the shared fraud-report population. Implementations stamp
// ReportedAt themselves and ignore a report whose phone number is already
// present.
type Community interface {
	InsertFraudReport(ctx context.Context, r *FraudReport) (inserted bool, err error)
	ListFraudReports(ctx context.Context) ([]FraudReport, error)
	PhoneSet(ctx context.Context) (map[string]struct{}, error)
	Close() error
}

// PrepareFraudReport validates r and rewrites its phone number to canonical
// form. Every store calls it before writing so keys compare by value.
func PrepareFraudReport(r *FraudReport) error {
	canon, ok := phone.Normalize(r.PhoneNumber)
	if !ok {
		return fmt.Errorf("phone number %q: %w", r.PhoneNumber, ErrInvalid)
	}
	r.PhoneNumber = canon
	r.Reason = strings.TrimSpace(r.Reason)
	return nil
}

// InsertFraudReport records a local report. A second report for the same
// number is ignored; inserted reports whether this call wrote the row.
func (db *DB) InsertFraudReport(r *FraudReport) (inserted bool, err error) {
	if err := PrepareFraudReport(r); err != nil {
		return false, err
	}
	r.Scope = ScopeLocal
	if r.ReportedAt.IsZero() {
		r.ReportedAt = time.Now()
	}
	return insertFraudReport(context.Background(), db.DB, r, true)
}

// ListFraudReports returns local reports, newest first.
func (db *DB) ListFraudReports() ([]FraudReport, error) {
	return listFraudReports(context.Background(), db.DB, ScopeLocal)
}

// FindFraudReport returns the local report for a number, or nil.
func (db *DB) FindFraudReport(number string) (*FraudReport, error) {
	canon, ok := phone.Normalize(number)
	if !ok {
		return nil, fmt.Errorf("phone number %q: %w", number, ErrInvalid)
	}
	var r FraudReport
	var reported int64
	err := db.QueryRow(`
		SELECT id, phone_number, reason, reported_by, reported_at
		FROM fraud_reports WHERE phone_number = ?`, canon).
		Scan(&r.ID, &r.PhoneNumber, &r.Reason, &r.ReportedBy, &reported)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.Scope = ScopeLocal
	r.ReportedAt = fromMillis(reported)
	return &r, nil
}

func insertFraudReport(ctx context.Context, db *sql.DB, r *FraudReport, stamp bool) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if stamp {
		res, err = db.ExecContext(ctx, `
			INSERT INTO fraud_reports (phone_number, reason, reported_by, reported_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(phone_number) DO NOTHING`,
			r.PhoneNumber, r.Reason, r.ReportedBy, r.ReportedAt.UnixMilli())
	} else {
		res, err = db.ExecContext(ctx, `
			INSERT INTO fraud_reports (phone_number, reason, reported_by)
			VALUES (?, ?, ?)
			ON CONFLICT(phone_number) DO NOTHING`,
			r.PhoneNumber, r.Reason, r.ReportedBy)
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		r.ID, _ = res.LastInsertId()
	}
	return n > 0, nil
}

func listFraudReports(ctx context.Context, db *sql.DB, scope Scope) ([]FraudReport, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, phone_number, reason, reported_by, reported_at
		FROM fraud_reports ORDER BY reported_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var reports []FraudReport
	for rows.Next() {
		r := FraudReport{Scope: scope}
		var reported int64
		if err := rows.Scan(&r.ID, &r.PhoneNumber, &r.Reason, &r.ReportedBy, &reported); err != nil {
			return nil, err
		}
		r.ReportedAt = fromMillis(reported)
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
