package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lunadata/weekreport/internal/models"
	"github.com/lunadata/weekreport/pkg/logger"
	"github.com/lunadata/weekreport/pkg/snowflake"
)

// NoteDTO is the notes payload in API form.
type NoteDTO struct {
	ID       string `json:"id"`
	ReportID string `json:"reportId"`
	Content  string `json:"content"`
}

// NotesService upserts the free-text notes of a report.
type NotesService struct {
	db  *gorm.DB
	ids *snowflake.Generator
	log zerolog.Logger
}

func NewNotesService(db *gorm.DB, ids *snowflake.Generator) *NotesService {
	return &NotesService{db: db, ids: ids, log: logger.Module("notes")}
}

// Upsert replaces a report's note content, minting a row when generation
// did not leave one behind.
func (s *NotesService) Upsert(ctx context.Context, reportID int64, content string) (*NoteDTO, error) {
	var report models.Report
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", reportID, false).
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "report", ID: strconv.FormatInt(reportID, 10)}
	}
	if err != nil {
		return nil, err
	}

	var note models.MeetingNote
	err = s.db.WithContext(ctx).Where("report_id = ?", reportID).First(&note).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		id, idErr := s.ids.NextID()
		if idErr != nil {
			return nil, idErr
		}
		note = models.MeetingNote{ID: id, ReportID: reportID, Content: content}
		if err := s.db.WithContext(ctx).Create(&note).Error; err != nil {
			return nil, err
		}
		s.log.Info().Int64("report_id", reportID).Msg("note created")
	case err != nil:
		return nil, err
	default:
		note.Content = content
		if err := s.db.WithContext(ctx).Save(&note).Error; err != nil {
			return nil, err
		}
		s.log.Info().Int64("report_id", reportID).Msg("note updated")
	}

	return &NoteDTO{
		ID:       strconv.FormatInt(note.ID, 10),
		ReportID: strconv.FormatInt(note.ReportID, 10),
		Content:  note.Content,
	}, nil
}
