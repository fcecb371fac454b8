// Package community provides the PostgreSQL-backed shared fraud-report store
// used when several agents point at one community database.
package community

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ebosoh/sales-agent/internal/store"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// fraudReport is the gorm model of the shared fraud_reports table.
type fraudReport struct {
	ID          uint      `gorm:"primaryKey"`
	PhoneNumber string    `gorm:"uniqueIndex;not null"`
	Reason      string    `gorm:"not null"`
	ReportedBy  string    `gorm:"not null"`
	ReportedAt  time.Time `gorm:"not null;autoCreateTime"`
}

func (fraudReport) TableName() string { return "fraud_reports" }

// Postgres is a store.Community on a PostgreSQL database.
type Postgres struct {
	db *gorm.DB
}

var _ store.Community = (*Postgres)(nil)

// IsPostgresDSN reports whether dsn addresses a PostgreSQL server rather
// than a SQLite file.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// Open connects to the community database and migrates its schema.
func Open(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect community db: %w", err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&fraudReport{}); err != nil {
		return nil, fmt.Errorf("migrate community db: %w", err)
	}
	return &Postgres{db: db}, nil
}

// InsertFraudReport shares a report; a number that is already flagged is
// silently ignored.
func (p *Postgres) InsertFraudReport(ctx context.Context, r *store.FraudReport) (bool, error) {
	if err := store.PrepareFraudReport(r); err != nil {
		return false, err
	}
	row := fraudReport{
		PhoneNumber: r.PhoneNumber,
		Reason:      r.Reason,
		ReportedBy:  r.ReportedBy,
	}
	res := p.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "phone_number"}}, DoNothing: true}).
		Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	r.ID = int64(row.ID)
	r.Scope = store.ScopeCommunity
	r.ReportedAt = row.ReportedAt
	return true, nil
}

// ListFraudReports returns every shared report, newest first.
func (p *Postgres) ListFraudReports(ctx context.Context) ([]store.FraudReport, error) {
	var rows []fraudReport
	if err := p.db.WithContext(ctx).Order("reported_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	reports := make([]store.FraudReport, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, store.FraudReport{
			ID:          int64(row.ID),
			Scope:       store.ScopeCommunity,
			PhoneNumber: row.PhoneNumber,
			Reason:      row.Reason,
			ReportedBy:  row.ReportedBy,
			ReportedAt:  row.ReportedAt,
		})
	}
	return reports, nil
}

// PhoneSet returns the flagged numbers.
func (p *Postgres) PhoneSet(ctx context.Context) (map[string]struct{}, error) {
	var phones []string
	if err := p.db.WithContext(ctx).Model(&fraudReport{}).Pluck("phone_number", &phones).Error; err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(phones))
	for _, ph := range phones {
		set[ph] = struct{}{}
	}
	return set, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
