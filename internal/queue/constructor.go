package queue

import (
	"context"
	"time"
)

// Reconciler finishes a recorded partition move.
type Reconciler interface {
	Reconcile(ctx context.Context, moveID string) error
}

type Queue struct {
	reconciler Reconciler
}

func NewQueue(reconciler Reconciler) *Queue {
	return &Queue{reconciler: reconciler}
}

const TaskTypeReconcileMove = "partition:reconcile"

// ReconcileDelay spaces the first retry from the failed attempt.
const ReconcileDelay = 30 * time.Second

type ReconcileMovePayload struct {
	MoveID string `json:"move_id"`
}
