package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/lunadata/weekreport/internal/config"
	"github.com/lunadata/weekreport/pkg/logger"
)

// SchedulerService triggers report generation every Monday morning. The run
// is skipped on statutory holidays and it never overwrites a report someone
// already generated by hand.
type SchedulerService struct {
	cfg     config.ScheduleConfig
	queue   TaskQueue
	holiday *HolidayService
	cron    *cron.Cron
	log     zerolog.Logger
}

func NewSchedulerService(cfg config.ScheduleConfig, queue TaskQueue, holiday *HolidayService) *SchedulerService {
	return &SchedulerService{
		cfg:     cfg,
		queue:   queue,
		holiday: holiday,
		log:     logger.Module("scheduler"),
	}
}

// Start registers the weekly cron entry. A no-op when scheduling is
// disabled.
func (s *SchedulerService) Start() error {
	if !s.cfg.Enabled {
		s.log.Info().Msg("scheduler disabled")
		return nil
	}

	hour, minute := parseClock(s.cfg.Time)
	expr := fmt.Sprintf("%d %d * * 1", minute, hour)

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(expr, s.run); err != nil {
		return fmt.Errorf("schedule weekly generation: %w", err)
	}
	s.cron.Start()

	s.log.Info().Str("cron", expr).Str("country", s.cfg.Country).Msg("weekly generation scheduled")
	return nil
}

func (s *SchedulerService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *SchedulerService) run() {
	now := time.Now()
	if !s.holiday.IsWorkday(now, s.cfg.Country) {
		s.log.Info().Time("date", now).Str("country", s.cfg.Country).Msg("holiday, skipping scheduled generation")
		return
	}

	task := &GenerateInput{
		WeekRange:  WeekRangeOf(now),
		WeekNumber: WeekNumberOf(now),
	}
	if err := s.queue.Enqueue(task); err != nil {
		s.log.Error().Err(err).Msg("enqueue scheduled generation failed")
		return
	}
	s.log.Info().Str("week_range", task.WeekRange).Msg("scheduled generation enqueued")
}

// parseClock splits "HH:MM", defaulting to 09:00 on malformed input.
func parseClock(value string) (hour, minute int) {
	hour, minute = 9, 0
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return hour, minute
	}
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return 9, 0
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 9, 0
	}
	return hour, minute
}
