package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lunadata/weekreport/internal/models"
	"github.com/lunadata/weekreport/internal/sources"
	"github.com/lunadata/weekreport/internal/store"
	"github.com/lunadata/weekreport/pkg/logger"
	"github.com/lunadata/weekreport/pkg/snowflake"
)

// GenerateInput are the report generation parameters. Empty WeekRange and
// zero WeekNumber mean "the current week".
type GenerateInput struct {
	WeekRange  string `json:"weekRange"`
	WeekNumber int    `json:"weekNumber"`
	Overwrite  bool   `json:"overwrite"`
}

// MetricDTO is one system metric in API form.
type MetricDTO struct {
	ID          string `json:"id"`
	MetricKey   string `json:"metricKey"`
	MetricValue string `json:"metricValue"`
	StatusCode  string `json:"statusCode"`
}

// ItemDTO is one report line in API form. IDs are decimal strings.
type ItemDTO struct {
	ID          string `json:"id"`
	TabType     string `json:"tabType"`
	SourceType  string `json:"sourceType"`
	ParentID    string `json:"parentId,omitempty"`
	ContentJSON string `json:"contentJson"`
	SortOrder   int    `json:"sortOrder"`
}

// ReportResult is the assembled report returned by generation and by the
// report detail endpoint.
type ReportResult struct {
	ID         string      `json:"id"`
	WeekRange  string      `json:"weekRange"`
	WeekNumber int         `json:"weekNumber"`
	CreatedAt  time.Time   `json:"createdAt"`
	Metrics    []MetricDTO `json:"metrics"`
	Items      []ItemDTO   `json:"items"`
	Notes      string      `json:"notes"`
}

// GenerateService builds one weekly report from the external sources and
// persists it in a single transaction.
type GenerateService struct {
	store   store.ReportStore
	gateway sources.Gateway
	ids     *snowflake.Generator
	log     zerolog.Logger
}

func NewGenerateService(st store.ReportStore, gw sources.Gateway, ids *snowflake.Generator) *GenerateService {
	return &GenerateService{
		store:   st,
		gateway: gw,
		ids:     ids,
		log:     logger.Module("generate"),
	}
}

// Generate creates or overwrites the report for the requested week.
//
// The conflict decision happens before any external fetch so a duplicate
// request costs nothing. The three fetches then run concurrently and the
// first failure aborts the whole generation. All rows are written in one
// transaction; on overwrite the report keeps its ID and CreatedAt while
// every child row is replaced with freshly minted IDs.
func (s *GenerateService) Generate(ctx context.Context, in GenerateInput) (*ReportResult, error) {
	now := time.Now()
	weekRange := in.WeekRange
	if weekRange == "" {
		weekRange = WeekRangeOf(now)
	}
	weekNumber := in.WeekNumber
	if weekNumber == 0 {
		weekNumber = WeekNumberOf(now)
	}

	s.log.Info().Str("week_range", weekRange).Int("week_number", weekNumber).Bool("overwrite", in.Overwrite).Msg("generating report")

	existing, err := s.store.FindReportByWeekRange(ctx, weekRange)
	if err != nil {
		return nil, err
	}
	if existing != nil && !in.Overwrite {
		return nil, &ConflictError{WeekRange: weekRange}
	}

	done, plan, metricRecords, err := s.fetchAll(ctx, weekNumber)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("done", len(done)).Int("plan", len(plan)).Int("metrics", len(metricRecords)).Msg("sources fetched")

	var reportID int64
	if existing != nil {
		reportID = existing.ID
	} else {
		reportID, err = s.ids.NextID()
		if err != nil {
			return nil, err
		}
	}

	metrics, items, note, err := s.buildRows(reportID, metricRecords, done, plan)
	if err != nil {
		return nil, err
	}

	var report models.Report
	err = s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		if existing == nil {
			report = models.Report{
				ID:         reportID,
				WeekRange:  weekRange,
				WeekNumber: weekNumber,
			}
			if err := tx.CreateReport(&report); err != nil {
				return err
			}
		} else {
			if err := tx.DeleteChildren(reportID); err != nil {
				return err
			}
			if err := tx.UpdateReportWeek(reportID, weekRange, weekNumber); err != nil {
				return err
			}
			current, err := tx.GetReport(reportID)
			if err != nil {
				return err
			}
			if current == nil {
				return &NotFoundError{Resource: "report", ID: strconv.FormatInt(reportID, 10)}
			}
			report = *current
		}

		if err := tx.CreateMetrics(metrics); err != nil {
			return err
		}
		if err := tx.CreateItems(items); err != nil {
			return err
		}
		return tx.CreateNote(note)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("report_id", reportID).Int("items", len(items)).Int("metrics", len(metrics)).Msg("report written")

	return AssembleResult(&report, metrics, items, note.Content), nil
}

// Health reports reachability of every dependency: the application database
// plus each source the gateway knows about.
func (s *GenerateService) Health(ctx context.Context) map[string]bool {
	status := s.gateway.HealthCheck(ctx)
	status["database"] = s.store.Ping(ctx) == nil
	return status
}

// fetchAll runs the three source fetches concurrently and fails fast on the
// first error.
func (s *GenerateService) fetchAll(ctx context.Context, weekNumber int) ([]sources.TaskRecord, []sources.TaskRecord, []sources.MetricRecord, error) {
	var (
		done    []sources.TaskRecord
		plan    []sources.TaskRecord
		metrics []sources.MetricRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if done, err = s.gateway.FetchDoneTasks(gctx); err != nil {
			return &SourceError{Source: "jira_done", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if plan, err = s.gateway.FetchPlanTasks(gctx); err != nil {
			return &SourceError{Source: "jira_plan", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if metrics, err = s.gateway.FetchMetrics(gctx, weekNumber); err != nil {
			return &SourceError{Source: "metrics", Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return done, plan, metrics, nil
}

// buildRows assigns IDs in a fixed order (metrics, DONE tasks, PLAN tasks,
// note) and materializes the child rows. Sort order restarts at 0 per tab.
func (s *GenerateService) buildRows(reportID int64, metricRecords []sources.MetricRecord, done, plan []sources.TaskRecord) ([]models.SystemMetric, []models.ReportItem, *models.MeetingNote, error) {
	metrics := make([]models.SystemMetric, 0, len(metricRecords))
	for _, rec := range metricRecords {
		id, err := s.ids.NextID()
		if err != nil {
			return nil, nil, nil, err
		}
		metrics = append(metrics, models.SystemMetric{
			ID:          id,
			ReportID:    reportID,
			MetricKey:   rec.MetricKey,
			MetricValue: rec.MetricValue,
			StatusCode:  rec.StatusCode,
		})
	}

	items := make([]models.ReportItem, 0, len(done)+len(plan))
	appendTasks := func(tasks []sources.TaskRecord, tabType string) error {
		for i, task := range tasks {
			id, err := s.ids.NextID()
			if err != nil {
				return err
			}
			content, err := json.Marshal(task)
			if err != nil {
				return err
			}
			items = append(items, models.ReportItem{
				ID:          id,
				ReportID:    reportID,
				TabType:     tabType,
				SourceType:  models.SourceJira,
				ContentJSON: string(content),
				SortOrder:   i,
			})
		}
		return nil
	}
	if err := appendTasks(done, models.TabDone); err != nil {
		return nil, nil, nil, err
	}
	if err := appendTasks(plan, models.TabPlan); err != nil {
		return nil, nil, nil, err
	}

	noteID, err := s.ids.NextID()
	if err != nil {
		return nil, nil, nil, err
	}
	note := &models.MeetingNote{
		ID:       noteID,
		ReportID: reportID,
		Content:  "",
	}
	return metrics, items, note, nil
}

// AssembleResult converts persisted rows into the API shape.
func AssembleResult(report *models.Report, metrics []models.SystemMetric, items []models.ReportItem, notes string) *ReportResult {
	result := &ReportResult{
		ID:         strconv.FormatInt(report.ID, 10),
		WeekRange:  report.WeekRange,
		WeekNumber: report.WeekNumber,
		CreatedAt:  report.CreatedAt,
		Metrics:    make([]MetricDTO, 0, len(metrics)),
		Items:      make([]ItemDTO, 0, len(items)),
		Notes:      notes,
	}
	for _, m := range metrics {
		result.Metrics = append(result.Metrics, MetricDTO{
			ID:          strconv.FormatInt(m.ID, 10),
			MetricKey:   m.MetricKey,
			MetricValue: m.MetricValue,
			StatusCode:  m.StatusCode,
		})
	}
	for _, it := range items {
		dto := ItemDTO{
			ID:          strconv.FormatInt(it.ID, 10),
			TabType:     it.TabType,
			SourceType:  it.SourceType,
			ContentJSON: it.ContentJSON,
			SortOrder:   it.SortOrder,
		}
		if it.ParentID != nil {
			dto.ParentID = strconv.FormatInt(*it.ParentID, 10)
		}
		result.Items = append(result.Items, dto)
	}
	return result
}
