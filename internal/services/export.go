package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/lunadata/weekreport/internal/config"
	"github.com/lunadata/weekreport/internal/models"
	"github.com/lunadata/weekreport/pkg/logger"
)

// Human-readable labels for the well-known metric keys. Unknown keys are
// exported as-is.
var metricLabels = map[string]string{
	"TOTAL_COUNT":   "总计",
	"PROCESS_COUNT": "流程数据",
	"MANUAL_COUNT":  "自采数据",
	"VERIFY_ETL":    "验证环境 ETL",
	"REVIEW_ETL":    "复盘环境 ETL",
}

// ExportService renders one report as an xlsx workbook with five sheets:
// overview, DONE, SELF, PLAN and the meeting notes.
type ExportService struct {
	db  *gorm.DB
	cfg config.ExcelConfig
	log zerolog.Logger
}

func NewExportService(db *gorm.DB, cfg config.ExcelConfig) *ExportService {
	return &ExportService{db: db, cfg: cfg, log: logger.Module("export")}
}

// Export builds the workbook for a report. It returns the file bytes and a
// download filename derived from the week range.
func (s *ExportService) Export(ctx context.Context, reportID int64) ([]byte, string, error) {
	var report models.Report
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", reportID, false).
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", &NotFoundError{Resource: "report", ID: strconv.FormatInt(reportID, 10)}
	}
	if err != nil {
		return nil, "", err
	}

	var metrics []models.SystemMetric
	if err := s.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("id ASC").
		Find(&metrics).Error; err != nil {
		return nil, "", err
	}

	var items []models.ReportItem
	if err := s.db.WithContext(ctx).
		Where("report_id = ? AND is_deleted = ?", reportID, false).
		Order("tab_type ASC, sort_order ASC").
		Find(&items).Error; err != nil {
		return nil, "", err
	}

	notes := ""
	var note models.MeetingNote
	err = s.db.WithContext(ctx).Where("report_id = ?", reportID).First(&note).Error
	if err == nil {
		notes = note.Content
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeOverviewSheet(f, &report, metrics); err != nil {
		return nil, "", err
	}
	if err := s.writeDoneSheet(f, filterTab(items, models.TabDone)); err != nil {
		return nil, "", err
	}
	if err := s.writeSelfSheet(f, filterTab(items, models.TabSelf)); err != nil {
		return nil, "", err
	}
	if err := s.writePlanSheet(f, filterTab(items, models.TabPlan)); err != nil {
		return nil, "", err
	}
	if err := s.writeNotesSheet(f, notes); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}

	filename := fmt.Sprintf("weekly-report-%s.xlsx", strings.ReplaceAll(report.WeekRange, "/", ""))
	s.log.Info().Int64("report_id", reportID).Int("metrics", len(metrics)).Int("items", len(items)).Msg("report exported")
	return buf.Bytes(), filename, nil
}

func (s *ExportService) writeOverviewSheet(f *excelize.File, report *models.Report, metrics []models.SystemMetric) error {
	const sheet = "概览"
	// The workbook opens with a default sheet; rename it into the first tab.
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 20); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 30); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"数据周报"},
		{"周期", report.WeekRange},
		{"周数", fmt.Sprintf("第 %d 周", report.WeekNumber)},
		{"生成时间", report.CreatedAt.Format("2006-01-02 15:04:05")},
		{},
		{"指标名称", "指标值"},
	}
	for _, m := range metrics {
		label := metricLabels[m.MetricKey]
		if label == "" {
			label = m.MetricKey
		}
		rows = append(rows, []interface{}{label, m.MetricValue})
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", titleStyle); err != nil {
		return err
	}
	return s.styleHeaderRow(f, sheet, 6, 2)
}

func (s *ExportService) writeDoneSheet(f *excelize.File, items []models.ReportItem) error {
	const sheet = "本周完成"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	widths := []float64{15, 40, 12, 12, 12, 12, 12, 12, 12}
	if err := setColWidths(f, sheet, widths); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Jira号", "任务名称", "状态", "负责人", "开发环境", "测试环境", "验证环境", "复盘环境", "生产环境"},
	}
	for _, item := range items {
		content := parseContent(item.ContentJSON)
		rows = append(rows, []interface{}{
			content["jiraKey"], content["title"], content["status"], content["assignee"],
			content["devStatus"], content["testStatus"], content["verifyStatus"],
			content["reviewStatus"], content["prodStatus"],
		})
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	return s.styleHeaderRow(f, sheet, 1, len(widths))
}

func (s *ExportService) writeSelfSheet(f *excelize.File, items []models.ReportItem) error {
	const sheet = "自采数据"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := setColWidths(f, sheet, []float64{50, 12, 12}); err != nil {
		return err
	}

	indent := strings.Repeat(" ", s.cfg.IndentSize)
	rows := [][]interface{}{
		{"任务名称", "负责人", "工期（天）"},
	}
	for _, root := range items {
		if root.ParentID != nil {
			continue
		}
		content := parseContent(root.ContentJSON)
		rows = append(rows, []interface{}{content["title"], content["assignee"], content["workDays"]})

		for _, child := range items {
			if child.ParentID == nil || *child.ParentID != root.ID {
				continue
			}
			childContent := parseContent(child.ContentJSON)
			rows = append(rows, []interface{}{
				fmt.Sprintf("%s└─ %v", indent, childContent["title"]),
				childContent["assignee"], childContent["workDays"],
			})
		}
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	return s.styleHeaderRow(f, sheet, 1, 3)
}

func (s *ExportService) writePlanSheet(f *excelize.File, items []models.ReportItem) error {
	const sheet = "后续计划"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := setColWidths(f, sheet, []float64{15, 40, 12, 12, 12}); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Jira号", "任务名称", "状态", "负责人", "预计工期"},
	}
	for _, item := range items {
		content := parseContent(item.ContentJSON)
		rows = append(rows, []interface{}{
			content["jiraKey"], content["title"], content["status"],
			content["assignee"], content["workDays"],
		})
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	return s.styleHeaderRow(f, sheet, 1, 5)
}

func (s *ExportService) writeNotesSheet(f *excelize.File, notes string) error {
	const sheet = "会议待办"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 80); err != nil {
		return err
	}

	rows := [][]interface{}{{"会议待办事项"}, {}}
	for _, line := range strings.Split(notes, "\n") {
		rows = append(rows, []interface{}{line})
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", "A1", titleStyle)
}

// styleHeaderRow applies the bold grey header styling used on every sheet.
func (s *ExportService) styleHeaderRow(f *excelize.File, sheet string, row, cols int) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E7E6E6"}},
	})
	if err != nil {
		return err
	}
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, start, end, style)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func setColWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func filterTab(items []models.ReportItem, tabType string) []models.ReportItem {
	var out []models.ReportItem
	for _, item := range items {
		if item.TabType == tabType {
			out = append(out, item)
		}
	}
	return out
}

// parseContent tolerates malformed payloads; export renders what it can.
func parseContent(contentJSON string) map[string]interface{} {
	var content map[string]interface{}
	if err := json.Unmarshal([]byte(contentJSON), &content); err != nil || content == nil {
		return map[string]interface{}{}
	}
	return content
}
