package services

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/lunadata/weekreport/internal/config"
	"github.com/lunadata/weekreport/pkg/logger"
)

const TaskTypeGenerate = "report:generate"

// TaskQueue carries generation jobs from the scheduler to a worker. With
// Redis enabled jobs go through asynq; otherwise they run in-process.
type TaskQueue interface {
	Enqueue(task *GenerateInput) error
	IsAsync() bool
	Close() error
}

// NewTaskQueue picks the queue implementation for the current config,
// falling back to the sync queue when Redis is unreachable.
func NewTaskQueue(cfg *config.Config) TaskQueue {
	if !cfg.Redis.Enabled {
		logger.Info().Msg("task queue running in sync mode, redis disabled")
		return NewSyncQueue()
	}

	queue, err := NewAsyncQueue(&cfg.Redis)
	if err != nil {
		logger.Infof("redis unavailable, task queue falling back to sync mode: %v", err)
		return NewSyncQueue()
	}
	logger.Infof("async task queue connected to redis at %s", cfg.Redis.Addr)
	return queue
}

// AsyncQueue implements TaskQueue on asynq.
type AsyncQueue struct {
	client *asynq.Client
}

func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Verify the connection before committing to async mode.
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()
	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

func (q *AsyncQueue) Enqueue(task *GenerateInput) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	info, err := q.client.Enqueue(
		asynq.NewTask(TaskTypeGenerate, payload),
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Infof("generation task enqueued: id=%s queue=%s", info.ID, info.Queue)
	return nil
}

func (q *AsyncQueue) IsAsync() bool { return true }

func (q *AsyncQueue) Close() error { return q.client.Close() }

// SyncQueue runs each job immediately in its own goroutine.
type SyncQueue struct {
	processor func(context.Context, *GenerateInput) error
}

func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

// SetProcessor sets the function that executes queued jobs.
func (q *SyncQueue) SetProcessor(processor func(context.Context, *GenerateInput) error) {
	q.processor = processor
}

func (q *SyncQueue) Enqueue(task *GenerateInput) error {
	if q.processor == nil {
		logger.Info().Msg("sync queue has no processor, task dropped")
		return nil
	}

	go func() {
		if err := q.processor(context.Background(), task); err != nil {
			logger.Errorf("generation task failed: %v", err)
		}
	}()
	return nil
}

func (q *SyncQueue) IsAsync() bool { return false }

func (q *SyncQueue) Close() error { return nil }
