package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/lunadata/weekreport/internal/config"
)

func TestExport_BuildsFiveSheets(t *testing.T) {
	db := openTestDB(t)
	svc := NewExportService(db, config.ExcelConfig{IndentSize: 2})
	report := seedReport(t, db)

	data, filename, err := svc.Export(context.Background(), report.ID)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if filename != "weekly-report-20260112-20260118.xlsx" {
		t.Errorf("filename = %q", filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open exported workbook: %v", err)
	}
	defer f.Close()

	want := []string{"概览", "本周完成", "自采数据", "后续计划", "会议待办"}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("sheets = %v, expected %v", got, want)
	}
	for i, name := range want {
		if got[i] != name {
			t.Errorf("sheets[%d] = %q, expected %q", i, got[i], name)
		}
	}

	weekCell, err := f.GetCellValue("概览", "B2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if weekCell != report.WeekRange {
		t.Errorf("overview B2 = %q, expected week range", weekCell)
	}
	metricLabel, _ := f.GetCellValue("概览", "A7")
	if metricLabel != "总计" {
		t.Errorf("overview A7 = %q, expected TOTAL_COUNT label", metricLabel)
	}

	doneKey, _ := f.GetCellValue("本周完成", "A2")
	if doneKey != "PROJ-1" {
		t.Errorf("done A2 = %q", doneKey)
	}

	// SELF sheet: root first, child indented underneath.
	rootTitle, _ := f.GetCellValue("自采数据", "A2")
	if rootTitle != "数据采集" {
		t.Errorf("self A2 = %q", rootTitle)
	}
	childTitle, _ := f.GetCellValue("自采数据", "A3")
	if !strings.Contains(childTitle, "└─") || !strings.Contains(childTitle, "清洗脚本") {
		t.Errorf("self A3 = %q, expected indented child", childTitle)
	}

	noteLine, _ := f.GetCellValue("会议待办", "A3")
	if noteLine != "review pipeline" {
		t.Errorf("notes A3 = %q", noteLine)
	}
}

func TestExport_MissingReport(t *testing.T) {
	db := openTestDB(t)
	svc := NewExportService(db, config.ExcelConfig{IndentSize: 2})

	var nf *NotFoundError
	if _, _, err := svc.Export(context.Background(), 31337); !errors.As(err, &nf) {
		t.Errorf("Export() error = %v, expected NotFoundError", err)
	}
}
