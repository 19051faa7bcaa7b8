package models

import (
	"time"
)

// Tab classification of a report line.
const (
	TabDone = "DONE" // completed this week
	TabSelf = "SELF" // self-reported, tree-structured
	TabPlan = "PLAN" // planned next
)

// Provenance of a report line.
const (
	SourceJira   = "JIRA"
	SourceSQL    = "SQL"
	SourceManual = "MANUAL"
)

// Metric status codes.
const (
	StatusLoading = "loading"
	StatusSuccess = "success"
	StatusNormal  = "normal"
)

// Report is one version of a weekly report. IDs across all four entities are
// snowflake-assigned, never auto-incremented, and rendered as decimal strings
// in JSON so they survive float-based consumers.
type Report struct {
	ID         int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	WeekRange  string    `gorm:"size:32;not null;index:idx_reports_week_deleted,priority:1" json:"week_range"`
	WeekNumber int       `gorm:"not null" json:"week_number"`
	IsDeleted  bool      `gorm:"not null;default:false;index:idx_reports_week_deleted,priority:2;index:idx_reports_deleted_created,priority:1" json:"-"`
	CreatedAt  time.Time `gorm:"index:idx_reports_deleted_created,priority:2" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SystemMetric is a named measurement attached to a report. Metrics are
// replaced wholesale on every generation, never patched individually.
type SystemMetric struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	ReportID    int64     `gorm:"not null;uniqueIndex:uniq_metrics_report_key,priority:1" json:"report_id,string"`
	MetricKey   string    `gorm:"size:64;not null;uniqueIndex:uniq_metrics_report_key,priority:2" json:"metric_key"`
	MetricValue string    `gorm:"size:128;not null" json:"metric_value"`
	StatusCode  string    `gorm:"size:32;not null" json:"status_code"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReportItem is one report line. SELF items may form a two-level tree via
// ParentID: a non-nil ParentID must reference an item whose own ParentID is
// nil, both rows belonging to the same report.
type ReportItem struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	ReportID    int64     `gorm:"not null;index:idx_items_report_tab_sort,priority:1" json:"report_id,string"`
	TabType     string    `gorm:"size:16;not null;index:idx_items_report_tab_sort,priority:2" json:"tab_type"`
	SourceType  string    `gorm:"size:16;not null" json:"source_type"`
	ParentID    *int64    `gorm:"index:idx_items_parent" json:"parent_id,string"`
	ContentJSON string    `gorm:"type:text;not null" json:"content_json"`
	SortOrder   int       `gorm:"not null;index:idx_items_report_tab_sort,priority:3" json:"sort_order"`
	IsDeleted   bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MeetingNote is the free-text notes payload, one row per report. Created
// empty at generation time and edited through the notes endpoint.
type MeetingNote struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	ReportID  int64     `gorm:"not null;index:idx_notes_report" json:"report_id,string"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (Report) TableName() string       { return "reports" }
func (SystemMetric) TableName() string { return "system_metrics" }
func (ReportItem) TableName() string   { return "report_items" }
func (MeetingNote) TableName() string  { return "meeting_notes" }
