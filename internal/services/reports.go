package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lunadata/weekreport/internal/models"
	"github.com/lunadata/weekreport/pkg/logger"
)

// ReportSummary is one row of the report history list.
type ReportSummary struct {
	ID         string `json:"id"`
	WeekRange  string `json:"weekRange"`
	WeekNumber int    `json:"weekNumber"`
	CreatedAt  string `json:"createdAt"`
}

// ReportPage is a paged slice of the report history.
type ReportPage struct {
	Items      []ReportSummary `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// ReportsService serves history queries, detail assembly and soft deletes.
type ReportsService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewReportsService(db *gorm.DB) *ReportsService {
	return &ReportsService{db: db, log: logger.Module("reports")}
}

// List returns non-deleted reports ordered by creation time, newest first.
func (s *ReportsService) List(ctx context.Context, page, pageSize int) (*ReportPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("is_deleted = ?", false).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var reports []models.Report
	if err := s.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&reports).Error; err != nil {
		return nil, err
	}

	result := &ReportPage{
		Items:    make([]ReportSummary, 0, len(reports)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, r := range reports {
		result.Items = append(result.Items, ReportSummary{
			ID:         strconv.FormatInt(r.ID, 10),
			WeekRange:  r.WeekRange,
			WeekNumber: r.WeekNumber,
			CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		})
	}
	result.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	return result, nil
}

// Get assembles a full report: metrics by id, items by tab then sort order,
// plus the note content.
func (s *ReportsService) Get(ctx context.Context, id int64) (*ReportResult, error) {
	report, err := s.findLive(ctx, id)
	if err != nil {
		return nil, err
	}

	var metrics []models.SystemMetric
	if err := s.db.WithContext(ctx).
		Where("report_id = ?", id).
		Order("id ASC").
		Find(&metrics).Error; err != nil {
		return nil, err
	}

	var items []models.ReportItem
	if err := s.db.WithContext(ctx).
		Where("report_id = ? AND is_deleted = ?", id, false).
		Order("tab_type ASC, sort_order ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}

	notes := ""
	var note models.MeetingNote
	err = s.db.WithContext(ctx).Where("report_id = ?", id).First(&note).Error
	if err == nil {
		notes = note.Content
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return AssembleResult(report, metrics, items, notes), nil
}

// Delete marks a report deleted, freeing its week range for regeneration.
// Child rows stay in place for the detail history of other tools.
func (s *ReportsService) Delete(ctx context.Context, id int64) error {
	report, err := s.findLive(ctx, id)
	if err != nil {
		return err
	}

	s.log.Info().Int64("report_id", id).Str("week_range", report.WeekRange).Msg("soft deleting report")
	return s.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

func (s *ReportsService) findLive(ctx context.Context, id int64) (*models.Report, error) {
	var report models.Report
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "report", ID: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}
