package services

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lunadata/weekreport/internal/models"
	"github.com/lunadata/weekreport/pkg/snowflake"
)

var memDBSeq int

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	memDBSeq++
	dsn := fmt.Sprintf("file:servicestest%d?mode=memory&cache=shared", memDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Report{}, &models.SystemMetric{}, &models.ReportItem{}, &models.MeetingNote{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testIDs(t *testing.T) *snowflake.Generator {
	t.Helper()
	ids, err := snowflake.New(2, 2)
	if err != nil {
		t.Fatalf("snowflake.New() error = %v", err)
	}
	return ids
}

// seedReport inserts one live report with a metric, three items (one DONE,
// one SELF root with a child) and a note.
func seedReport(t *testing.T, db *gorm.DB) *models.Report {
	t.Helper()
	report := &models.Report{
		ID:         1001,
		WeekRange:  "2026/01/12-2026/01/18",
		WeekNumber: 3,
		CreatedAt:  time.Now().Add(-time.Hour),
	}
	if err := db.Create(report).Error; err != nil {
		t.Fatalf("seed report: %v", err)
	}

	metric := &models.SystemMetric{
		ID: 2001, ReportID: report.ID,
		MetricKey: "TOTAL_COUNT", MetricValue: "1234", StatusCode: "success",
	}
	if err := db.Create(metric).Error; err != nil {
		t.Fatalf("seed metric: %v", err)
	}

	parentID := int64(3002)
	items := []models.ReportItem{
		{ID: 3001, ReportID: report.ID, TabType: models.TabDone, SourceType: models.SourceJira,
			ContentJSON: `{"jiraKey":"PROJ-1","title":"Ship exporter","status":"Done","assignee":"Wang Lei"}`, SortOrder: 0},
		{ID: 3002, ReportID: report.ID, TabType: models.TabSelf, SourceType: models.SourceManual,
			ContentJSON: `{"title":"数据采集","assignee":"Li Na","workDays":3}`, SortOrder: 0},
		{ID: 3003, ReportID: report.ID, TabType: models.TabSelf, SourceType: models.SourceManual, ParentID: &parentID,
			ContentJSON: `{"title":"清洗脚本","assignee":"Li Na","workDays":1}`, SortOrder: 1},
	}
	if err := db.Create(&items).Error; err != nil {
		t.Fatalf("seed items: %v", err)
	}

	note := &models.MeetingNote{ID: 4001, ReportID: report.ID, Content: "review pipeline\nplan demo"}
	if err := db.Create(note).Error; err != nil {
		t.Fatalf("seed note: %v", err)
	}
	return report
}
