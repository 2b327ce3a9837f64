package cron

import (
	"context"
	"time"

	"parkinglot/config"
	"parkinglot/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Worker runs the background queue and the periodic reconcile schedule.
type Worker struct {
	srv       *asynq.Server
	scheduler *asynq.Scheduler
	logger    *zap.Logger
	cancel    context.CancelFunc
}

// RedisOpt is the asynq connection built from config.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitReconcileWorker starts the worker in the background and registers the
// reconcile job on cronSpec.
func InitReconcileWorker(r tasks.Reconciler, cronSpec string, logger *zap.Logger) (*Worker, error) {
	redisOpts := RedisOpt()

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
			Logger:   logger.Sugar(),
			LogLevel: asynq.WarnLevel,
		},
	)
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeReconcile, tasks.HandleReconcileTask(r, logger))

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{
		Location: time.UTC,
		Logger:   logger.Sugar(),
		LogLevel: asynq.WarnLevel,
	})
	task, opts, err := tasks.NewReconcileTask("schedule", time.Now())
	if err != nil {
		return nil, err
	}
	entryID, err := scheduler.Register(cronSpec, task, opts...)
	if err != nil {
		return nil, err
	}
	logger.Info("Reconcile job scheduled", zap.String("spec", cronSpec), zap.String("entryId", entryID))

	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{srv: srv, scheduler: scheduler, logger: logger, cancel: cancel}

	go monitorRedisConnection(ctx, logger)

	// Start with retry, the queue may come up after the API.
	go func() {
		const maxAttempts = 5
		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				break
			}
			logger.Warn("Failed to start worker", zap.Int("attempt", attempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("Worker not started, reconcile jobs will not run")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
		if err := scheduler.Start(); err != nil {
			logger.Error("Failed to start scheduler", zap.Error(err))
		}
	}()
	return w, nil
}

// Shutdown stops the scheduler and waits for running tasks.
func (w *Worker) Shutdown() {
	w.cancel()
	w.scheduler.Shutdown()
	w.srv.Shutdown()
	w.logger.Info("Worker stopped")
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection(ctx context.Context, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil && ctx.Err() == nil {
				logger.Warn("Queue Redis connection lost", zap.Error(err))
			}
		}
	}
}
