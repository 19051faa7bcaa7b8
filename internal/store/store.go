// Package store is the persistence boundary used by report generation. All
// writes for one generation go through a single transaction handle; a
// returned error rolls the whole batch back.
package store

import (
	"context"
	"errors"

	"github.com/lunadata/weekreport/internal/models"
	"gorm.io/gorm"
)

// ReportStore is consumed by the generation orchestrator.
type ReportStore interface {
	// FindReportByWeekRange returns the live (non-deleted) report for the
	// week range, or nil when there is none.
	FindReportByWeekRange(ctx context.Context, weekRange string) (*models.Report, error)
	// RunInTransaction executes fn with a transactional handle. The
	// transaction commits when fn returns nil and rolls back otherwise,
	// propagating fn's error.
	RunInTransaction(ctx context.Context, fn func(tx Tx) error) error
	// Ping verifies database connectivity.
	Ping(ctx context.Context) error
}

// Tx is the write surface available inside one transaction.
type Tx interface {
	CreateReport(r *models.Report) error
	UpdateReportWeek(reportID int64, weekRange string, weekNumber int) error
	GetReport(id int64) (*models.Report, error)
	CreateMetrics(metrics []models.SystemMetric) error
	CreateItems(items []models.ReportItem) error
	CreateNote(n *models.MeetingNote) error
	// DeleteChildren removes all metric, item and note rows of a report.
	DeleteChildren(reportID int64) error
}

// GormStore implements ReportStore on the application database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindReportByWeekRange(ctx context.Context, weekRange string) (*models.Report, error) {
	var report models.Report
	err := s.db.WithContext(ctx).
		Where("week_range = ? AND is_deleted = ?", weekRange, false).
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) RunInTransaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) CreateReport(r *models.Report) error {
	return t.db.Create(r).Error
}

func (t *gormTx) UpdateReportWeek(reportID int64, weekRange string, weekNumber int) error {
	return t.db.Model(&models.Report{}).
		Where("id = ?", reportID).
		Updates(map[string]interface{}{
			"week_range":  weekRange,
			"week_number": weekNumber,
		}).Error
}

func (t *gormTx) GetReport(id int64) (*models.Report, error) {
	var report models.Report
	err := t.db.Where("id = ? AND is_deleted = ?", id, false).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (t *gormTx) CreateMetrics(metrics []models.SystemMetric) error {
	if len(metrics) == 0 {
		return nil
	}
	return t.db.Create(&metrics).Error
}

func (t *gormTx) CreateItems(items []models.ReportItem) error {
	if len(items) == 0 {
		return nil
	}
	return t.db.Create(&items).Error
}

func (t *gormTx) CreateNote(n *models.MeetingNote) error {
	return t.db.Create(n).Error
}

func (t *gormTx) DeleteChildren(reportID int64) error {
	if err := t.db.Where("report_id = ?", reportID).Delete(&models.SystemMetric{}).Error; err != nil {
		return err
	}
	if err := t.db.Where("report_id = ?", reportID).Delete(&models.ReportItem{}).Error; err != nil {
		return err
	}
	return t.db.Where("report_id = ?", reportID).Delete(&models.MeetingNote{}).Error
}
