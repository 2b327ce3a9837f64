package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"parkinglot/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeReconcile = "parking:reconcile"

// ReconcilePayload says who asked for a reconciliation run.
type ReconcilePayload struct {
	Trigger     string    `json:"trigger"`
	RequestedAt time.Time `json:"requestedAt"`
}

// Reconciler is the part of the parking service the task needs.
type Reconciler interface {
	Reconcile(ctx context.Context) (*models.ReconcileReport, error)
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func NewReconcileTask(trigger string, at time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(ReconcilePayload{Trigger: trigger, RequestedAt: at.UTC()})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeReconcile, b)
	opts := []asynq.Option{
		asynq.MaxRetry(3),
		asynq.Timeout(2 * time.Minute),
	}
	return task, opts, nil
}

// EnqueueReconcile schedules a run on the worker and returns the task id.
func EnqueueReconcile(ctx context.Context, q Enqueuer, trigger string) (string, error) {
	task, opts, err := NewReconcileTask(trigger, time.Now())
	if err != nil {
		return "", err
	}
	info, err := q.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return "", fmt.Errorf("enqueue reconcile: %w", err)
	}
	return info.ID, nil
}

// HandleReconcileTask runs one reconciliation pass.
func HandleReconcileTask(r Reconciler, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p ReconcilePayload
		if len(task.Payload()) > 0 {
			if err := json.Unmarshal(task.Payload(), &p); err != nil {
				logger.Error("Invalid reconcile payload", zap.Error(err))
				return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
			}
		}

		report, err := r.Reconcile(ctx)
		if err != nil {
			logger.Error("Reconciliation failed", zap.String("trigger", p.Trigger), zap.Error(err))
			return err
		}
		logger.Info("Reconciliation finished",
			zap.String("trigger", p.Trigger),
			zap.Int("promoted", len(report.Promoted)),
			zap.Int("released", len(report.Released)))
		return nil
	}
}
