package queue

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

func (q *Queue) HandleReconcileMoveTask(ctx context.Context, task *asynq.Task) error {
	var payload ReconcileMovePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", TaskTypeReconcileMove, err, asynq.SkipRetry)
	}
	if payload.MoveID == "" {
		return fmt.Errorf("%s payload without move id: %w", TaskTypeReconcileMove, asynq.SkipRetry)
	}

	return q.reconciler.Reconcile(ctx, payload.MoveID)
}
