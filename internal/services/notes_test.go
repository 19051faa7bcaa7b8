package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lunadata/weekreport/internal/models"
)

func TestNotesUpsert_UpdatesExistingRow(t *testing.T) {
	db := openTestDB(t)
	svc := NewNotesService(db, testIDs(t))
	report := seedReport(t, db)

	note, err := svc.Upsert(context.Background(), report.ID, "follow up with infra team")
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if note.ID != "4001" {
		t.Errorf("note.ID = %s, expected the existing row to be reused", note.ID)
	}
	if note.Content != "follow up with infra team" {
		t.Errorf("note.Content = %q", note.Content)
	}

	var count int64
	if err := db.Model(&models.MeetingNote{}).Where("report_id = ?", report.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("note rows = %d, expected 1", count)
	}
}

func TestNotesUpsert_MintsMissingRow(t *testing.T) {
	db := openTestDB(t)
	svc := NewNotesService(db, testIDs(t))
	report := seedReport(t, db)
	if err := db.Where("report_id = ?", report.ID).Delete(&models.MeetingNote{}).Error; err != nil {
		t.Fatalf("clear note: %v", err)
	}

	note, err := svc.Upsert(context.Background(), report.ID, "fresh notes")
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if note.ID == "" || note.ID == "4001" {
		t.Errorf("note.ID = %s, expected a newly minted ID", note.ID)
	}
	if note.ReportID != "1001" {
		t.Errorf("note.ReportID = %s", note.ReportID)
	}
}

func TestNotesUpsert_MissingReport(t *testing.T) {
	db := openTestDB(t)
	svc := NewNotesService(db, testIDs(t))

	var nf *NotFoundError
	if _, err := svc.Upsert(context.Background(), 12345, "x"); !errors.As(err, &nf) {
		t.Errorf("Upsert() error = %v, expected NotFoundError", err)
	}
}
