package job

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper finishes partition moves left pending for longer than olderThan.
type Sweeper interface {
	Sweep(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

type ReconcileJob struct {
	sweeper   Sweeper
	olderThan time.Duration
	batchSize int
}

func NewReconcileJob(sweeper Sweeper, olderThan time.Duration, batchSize int) *ReconcileJob {
	return &ReconcileJob{
		sweeper:   sweeper,
		olderThan: olderThan,
		batchSize: batchSize,
	}
}

// Run is registered with cron. Each sweep is bounded to one minute.
func (j *ReconcileJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	done, err := j.sweeper.Sweep(ctx, j.olderThan, j.batchSize)
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if done > 0 {
		slog.Info("stale partition moves reconciled", "count", done)
	}
}
