package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"

	"github.com/lunadata/weekreport/internal/config"
	"github.com/lunadata/weekreport/pkg/logger"
)

// Worker consumes generation tasks from the async queue. It is only
// constructed when Redis is enabled.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor func(context.Context, *GenerateInput) error
	wg        sync.WaitGroup
	running   bool
	mu        sync.Mutex
}

func NewWorker(cfg *config.RedisConfig) *Worker {
	if !cfg.Enabled {
		return nil
	}

	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		},
		asynq.Config{
			// Generation is serialized; concurrent runs for the same week
			// would race on the conflict check.
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Errorf("task %s failed: %v", task.Type(), err)
			}),
		},
	)

	return &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
	}
}

// SetProcessor sets the function that executes generation tasks.
func (w *Worker) SetProcessor(processor func(context.Context, *GenerateInput) error) {
	w.processor = processor
}

// Start begins consuming tasks in the background.
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.mux.HandleFunc(TaskTypeGenerate, w.handleGenerateTask)

	w.running = true
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		logger.Info().Msg("async worker starting")
		if err := w.server.Run(w.mux); err != nil {
			logger.Errorf("async worker stopped: %v", err)
		}
	}()

	return nil
}

// Stop drains in-flight tasks and shuts the worker down.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	logger.Info().Msg("async worker shutting down")
	w.server.Shutdown()
	w.running = false
	w.wg.Wait()
}

func (w *Worker) handleGenerateTask(ctx context.Context, t *asynq.Task) error {
	var task GenerateInput
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return err
	}

	logger.Infof("processing generation task: week_range=%s overwrite=%t", task.WeekRange, task.Overwrite)

	if w.processor == nil {
		logger.Warn().Msg("no processor set, generation task dropped")
		return nil
	}
	return w.processor(ctx, &task)
}
