package main

import (
	"context"

	"github.com/lunadata/weekreport/internal/config"
	"github.com/lunadata/weekreport/internal/handlers"
	"github.com/lunadata/weekreport/internal/models"
	"github.com/lunadata/weekreport/internal/services"
	"github.com/lunadata/weekreport/internal/sources"
	"github.com/lunadata/weekreport/internal/store"
	"github.com/lunadata/weekreport/pkg/logger"
	"github.com/lunadata/weekreport/pkg/snowflake"
)

// appServices holds all initialized services and handlers needed by the
// application.
type appServices struct {
	metricDB  *sources.MetricDB
	scheduler *services.SchedulerService
	taskQueue services.TaskQueue
	worker    *services.Worker

	generateHandler *handlers.GenerateHandler
	reportsHandler  *handlers.ReportsHandler
	itemsHandler    *handlers.ItemsHandler
	notesHandler    *handlers.NotesHandler
	exportHandler   *handlers.ExportHandler
}

// bootstrap wires the database, ID generator, source adapters, services,
// queue and scheduler.
func bootstrap(cfg *config.Config) *appServices {
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}
	db := models.GetDB()

	ids, err := snowflake.New(cfg.ID.WorkerID, cfg.ID.DatacenterID)
	if err != nil {
		logger.Fatalf("Failed to create ID generator: %v", err)
	}

	metricDB, err := sources.NewMetricDB(cfg.Externals, cfg.SQL)
	if err != nil {
		logger.Fatalf("Failed to open external databases: %v", err)
	}
	gateway := sources.NewGateway(sources.NewJiraClient(cfg.Jira), metricDB)

	generateService := services.NewGenerateService(store.NewGormStore(db), gateway, ids)

	// Scheduled generation goes through the task queue; without Redis the
	// queue runs jobs in-process.
	processor := func(ctx context.Context, task *services.GenerateInput) error {
		_, err := generateService.Generate(ctx, *task)
		return err
	}
	taskQueue := services.NewTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(processor)
	}

	scheduler := services.NewSchedulerService(cfg.Schedule, taskQueue, services.NewHolidayService())
	if err := scheduler.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}

	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.NewWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(processor)
			if err := worker.Start(); err != nil {
				logger.Fatalf("Failed to start worker: %v", err)
			}
		}
	}

	return &appServices{
		metricDB:        metricDB,
		scheduler:       scheduler,
		taskQueue:       taskQueue,
		worker:          worker,
		generateHandler: handlers.NewGenerateHandler(generateService),
		reportsHandler:  handlers.NewReportsHandler(services.NewReportsService(db)),
		itemsHandler:    handlers.NewItemsHandler(services.NewItemsService(db, ids)),
		notesHandler:    handlers.NewNotesHandler(services.NewNotesService(db, ids)),
		exportHandler:   handlers.NewExportHandler(services.NewExportService(db, cfg.Excel)),
	}
}

func (s *appServices) shutdown() {
	s.scheduler.Stop()
	if s.worker != nil {
		s.worker.Stop()
	}
	s.taskQueue.Close()
	s.metricDB.Close()
}
