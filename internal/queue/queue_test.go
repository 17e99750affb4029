package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReconciler struct {
	ids []string
	err error
}

func (r *recordingReconciler) Reconcile(_ context.Context, moveID string) error {
	r.ids = append(r.ids, moveID)
	return r.err
}

func TestNewReconcileTask(t *testing.T) {
	task, err := NewReconcileTask("m1")
	require.NoError(t, err)
	assert.Equal(t, TaskTypeReconcileMove, task.Type())
	assert.JSONEq(t, `{"move_id":"m1"}`, string(task.Payload()))
}

func TestHandleReconcileMoveTask(t *testing.T) {
	rec := &recordingReconciler{}
	q := NewQueue(rec)

	task, err := NewReconcileTask("m1")
	require.NoError(t, err)
	require.NoError(t, q.HandleReconcileMoveTask(context.Background(), task))
	assert.Equal(t, []string{"m1"}, rec.ids)

	rec.err = errors.New("store unavailable")
	err = q.HandleReconcileMoveTask(context.Background(), task)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry), "store errors are retried")
}

func TestHandleReconcileMoveTaskSkipsBadPayloads(t *testing.T) {
	rec := &recordingReconciler{}
	q := NewQueue(rec)

	err := q.HandleReconcileMoveTask(context.Background(), asynq.NewTask(TaskTypeReconcileMove, []byte("not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = q.HandleReconcileMoveTask(context.Background(), asynq.NewTask(TaskTypeReconcileMove, []byte(`{}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	assert.Empty(t, rec.ids)
}
