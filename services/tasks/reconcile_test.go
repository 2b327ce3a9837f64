package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"parkinglot/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type countingReconciler struct {
	calls int
	err   error
}

func (c *countingReconciler) Reconcile(ctx context.Context) (*models.ReconcileReport, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &models.ReconcileReport{Promoted: []string{"PARK001"}}, nil
}

type recordingEnqueuer struct {
	tasks []*asynq.Task
}

func (r *recordingEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	r.tasks = append(r.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type()}, nil
}

func TestHandleReconcileTask(t *testing.T) {
	r := &countingReconciler{}
	task, _, err := NewReconcileTask("schedule", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if task.Type() != TypeReconcile {
		t.Fatalf("type = %s", task.Type())
	}
	if err := HandleReconcileTask(r, zap.NewNop())(context.Background(), task); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if r.calls != 1 {
		t.Fatalf("calls = %d", r.calls)
	}
}

func TestHandleReconcileTaskBadPayload(t *testing.T) {
	r := &countingReconciler{}
	err := HandleReconcileTask(r, zap.NewNop())(context.Background(), asynq.NewTask(TypeReconcile, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("err = %v, want SkipRetry", err)
	}
	if r.calls != 0 {
		t.Fatal("reconciler ran on bad payload")
	}
}

func TestHandleReconcileTaskPropagatesFailure(t *testing.T) {
	boom := errors.New("db down")
	task, _, _ := NewReconcileTask("manual", time.Now())
	err := HandleReconcileTask(&countingReconciler{err: boom}, zap.NewNop())(context.Background(), task)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestEnqueueReconcile(t *testing.T) {
	q := &recordingEnqueuer{}
	id, err := EnqueueReconcile(context.Background(), q, "admin")
	if err != nil || id != "task-1" {
		t.Fatalf("id = %q, err = %v", id, err)
	}
	if len(q.tasks) != 1 || q.tasks[0].Type() != TypeReconcile {
		t.Fatalf("tasks = %+v", q.tasks)
	}
}
