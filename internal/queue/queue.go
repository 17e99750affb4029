package queue

import (
	"context"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
	"github.com/maheshrc27/contentflow/internal/models"
)

// Enqueuer schedules move retries on the asynq queue.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func NewReconcileTask(moveID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ReconcileMovePayload{MoveID: moveID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReconcileMove, payload), nil
}

func (e *Enqueuer) EnqueueReconcile(ctx context.Context, moveID string) error {
	task, err := NewReconcileTask(moveID)
	if err != nil {
		return err
	}

	info, err := e.client.EnqueueContext(ctx, task,
		asynq.ProcessIn(ReconcileDelay),
		asynq.MaxRetry(models.MaxMoveAttempts),
		asynq.TaskID("reconcile:"+moveID),
	)
	if err != nil {
		return err
	}

	slog.Info("move retry scheduled", "move_id", moveID, "task_id", info.ID, "queue", info.Queue)
	return nil
}
