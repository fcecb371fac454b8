package store

import (
	"context"
	"database/sql"

	"github.com/ebosoh/sales-agent/internal/store/migrations"
)

// FileCommunity is a Community backed by a SQLite file, typically on a
// shared volume. It carries only the fraud_reports table.
type FileCommunity struct {
	db *sql.DB
}

var _ Community = (*FileCommunity)(nil)

// OpenCommunity opens (and migrates) a file-backed community store.
func OpenCommunity(path string) (*FileCommunity, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	if _, err := migrateUp(db, migrations.Community, "community"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &FileCommunity{db: db}, nil
}

// InsertFraudReport shares a report. The store stamps reported_at.
func (c *FileCommunity) InsertFraudReport(ctx context.Context, r *FraudReport) (bool, error) {
	if err := PrepareFraudReport(r); err != nil {
		return false, err
	}
	r.Scope = ScopeCommunity
	return insertFraudReport(ctx, c.db, r, false)
}

// ListFraudReports returns every shared report, newest first.
func (c *FileCommunity) ListFraudReports(ctx context.Context) ([]FraudReport, error) {
	return listFraudReports(ctx, c.db, ScopeCommunity)
}

// PhoneSet returns the set of flagged numbers in canonical form.
func (c *FileCommunity) PhoneSet(ctx context.Context) (map[string]struct{}, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT phone_number FROM fraud_reports`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	set := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		set[p] = struct{}{}
	}
	return set, rows.Err()
}

// Close closes the underlying connection.
func (c *FileCommunity) Close() error {
	return c.db.Close()
}
