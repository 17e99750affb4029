package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/repository"
)

// MoveRetrier schedules a later attempt at finishing a partition move.
type MoveRetrier interface {
	EnqueueReconcile(ctx context.Context, moveID string) error
}

// PartitionMover relocates a post between the unscheduled and scheduled
// partitions. The target row and a pending move record are written in one
// transaction; removing the source row happens afterwards and is retried
// from the move record when it fails. Reads hide the source row while its
// move is unfinished.
type PartitionMover struct {
	txr     repository.TxRunner
	posts   repository.PostRepository
	moves   repository.PartitionMoveRepository
	retrier MoveRetrier
}

func NewPartitionMover(txr repository.TxRunner, posts repository.PostRepository, moves repository.PartitionMoveRepository) *PartitionMover {
	return &PartitionMover{txr: txr, posts: posts, moves: moves}
}

// SetRetrier wires the background retry queue. Without one, failed removals
// wait for the periodic sweep.
func (m *PartitionMover) SetRetrier(r MoveRetrier) {
	m.retrier = r
}

// Move writes post into target and removes it from source. Only a failure of
// the transactional part is returned.
func (m *PartitionMover) Move(ctx context.Context, post *models.Post, source, target models.Partition) (*models.PartitionMove, error) {
	move := &models.PartitionMove{
		ID:     uuid.NewString(),
		PostID: post.ID,
		Source: source,
		Target: target,
		Status: models.MoveStatusPending,
	}

	err := m.txr.RunInTx(ctx, func(tx *sql.Tx) error {
		// A stale copy may still sit in target from an earlier move whose
		// cleanup never finished.
		if err := m.remove(ctx, tx, target, post.ID); err != nil {
			return err
		}
		if err := m.moves.ResolveForPost(ctx, tx, post.ID, target); err != nil {
			return err
		}
		if err := m.insert(ctx, tx, target, post); err != nil {
			return err
		}
		return m.moves.Create(ctx, tx, move)
	})
	if err != nil {
		return nil, storeErr("move post", err)
	}

	m.finish(ctx, move)
	return move, nil
}

func (m *PartitionMover) finish(ctx context.Context, move *models.PartitionMove) {
	if err := m.remove(ctx, nil, move.Source, move.PostID); err != nil {
		slog.Warn("source removal failed, move left pending",
			"move_id", move.ID, "post_id", move.PostID, "source", move.Source, "error", err)
		if ferr := m.moves.RecordFailure(ctx, move.ID, err.Error()); ferr != nil {
			slog.Error("record move failure", "move_id", move.ID, "error", ferr)
		}
		if m.retrier != nil {
			if qerr := m.retrier.EnqueueReconcile(ctx, move.ID); qerr != nil {
				slog.Error("enqueue move retry", "move_id", move.ID, "error", qerr)
			}
		}
		return
	}

	if err := m.moves.MarkDone(ctx, move.ID); err != nil {
		slog.Warn("mark move done", "move_id", move.ID, "error", err)
		return
	}
	move.Status = models.MoveStatusDone
}

// Reconcile retries the source removal of a recorded move. Moves that are
// already done or unknown are ignored.
func (m *PartitionMover) Reconcile(ctx context.Context, moveID string) error {
	move, err := m.moves.GetByID(ctx, moveID)
	if err != nil {
		return fmt.Errorf("get move %s: %w", moveID, err)
	}
	if move == nil || move.Status != models.MoveStatusPending {
		return nil
	}

	if err := m.remove(ctx, nil, move.Source, move.PostID); err != nil {
		if ferr := m.moves.RecordFailure(ctx, move.ID, err.Error()); ferr != nil {
			slog.Error("record move failure", "move_id", move.ID, "error", ferr)
		}
		return fmt.Errorf("remove %s row of post %s: %w", move.Source, move.PostID, err)
	}

	if err := m.moves.MarkDone(ctx, move.ID); err != nil {
		return fmt.Errorf("mark move %s done: %w", move.ID, err)
	}
	slog.Info("partition move reconciled", "move_id", move.ID, "post_id", move.PostID)
	return nil
}

// Sweep reconciles pending moves untouched for at least olderThan. It returns
// the number of moves finished.
func (m *PartitionMover) Sweep(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	pending, err := m.moves.ListPending(ctx, time.Now().Add(-olderThan), limit)
	if err != nil {
		return 0, fmt.Errorf("list pending moves: %w", err)
	}

	done := 0
	for _, move := range pending {
		if err := m.Reconcile(ctx, move.ID); err != nil {
			slog.Warn("reconcile move", "move_id", move.ID, "error", err)
			continue
		}
		done++
	}
	return done, nil
}

func (m *PartitionMover) insert(ctx context.Context, tx *sql.Tx, partition models.Partition, post *models.Post) error {
	if partition == models.PartitionScheduled {
		return m.posts.CreateScheduled(ctx, tx, post)
	}
	return m.posts.CreateUnscheduled(ctx, tx, post)
}

func (m *PartitionMover) remove(ctx context.Context, tx *sql.Tx, partition models.Partition, id string) error {
	if partition == models.PartitionScheduled {
		return m.posts.RemoveScheduled(ctx, tx, id)
	}
	return m.posts.RemoveUnscheduled(ctx, tx, id)
}
