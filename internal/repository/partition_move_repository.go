package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/contentflow/internal/models"
)

type PartitionMoveRepository interface {
	Create(ctx context.Context, tx *sql.Tx, m *models.PartitionMove) error
	GetByID(ctx context.Context, id string) (*models.PartitionMove, error)
	MarkDone(ctx context.Context, id string) error
	// ResolveForPost marks every unfinished move of postID out of source as
	// done. Used when the post re-enters source through a later move.
	ResolveForPost(ctx context.Context, tx *sql.Tx, postID string, source models.Partition) error
	RecordFailure(ctx context.Context, id string, errMsg string) error
	ListPending(ctx context.Context, olderThan time.Time, limit int) ([]*models.PartitionMove, error)
}

type partitionMoveRepository struct {
	db *sql.DB
}

func NewPartitionMoveRepository(db *sql.DB) PartitionMoveRepository {
	return &partitionMoveRepository{db: db}
}

const moveColumns = `id, post_id, source, target, status, attempts, last_error, created_at, updated_at`

func scanMove(row rowScanner) (*models.PartitionMove, error) {
	var m models.PartitionMove
	if err := row.Scan(&m.ID, &m.PostID, &m.Source, &m.Target, &m.Status, &m.Attempts, &m.LastError, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *partitionMoveRepository) Create(ctx context.Context, tx *sql.Tx, m *models.PartitionMove) error {
	query := `
		INSERT INTO partition_moves (id, post_id, source, target, status, attempts, last_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	now := time.Now()
	m.CreatedAt, m.UpdatedAt = now, now
	if m.Status == "" {
		m.Status = models.MoveStatusPending
	}

	_, err := conn(r.db, tx).ExecContext(ctx, query, m.ID, m.PostID, m.Source, m.Target, m.Status, m.Attempts, m.LastError, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *partitionMoveRepository) GetByID(ctx context.Context, id string) (*models.PartitionMove, error) {
	query := `SELECT ` + moveColumns + ` FROM partition_moves WHERE id = $1`

	m, err := scanMove(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return m, nil
}

func (r *partitionMoveRepository) MarkDone(ctx context.Context, id string) error {
	query := `
		UPDATE partition_moves
		SET status = $1,
			attempts = attempts + 1,
			last_error = '',
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, models.MoveStatusDone, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *partitionMoveRepository) ResolveForPost(ctx context.Context, tx *sql.Tx, postID string, source models.Partition) error {
	query := `
		UPDATE partition_moves
		SET status = $1,
			updated_at = $2
		WHERE post_id = $3 AND source = $4 AND status <> $1
	`
	_, err := conn(r.db, tx).ExecContext(ctx, query, models.MoveStatusDone, time.Now(), postID, source)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// RecordFailure bumps the attempt counter and parks the move as failed once
// it reaches models.MaxMoveAttempts.
func (r *partitionMoveRepository) RecordFailure(ctx context.Context, id string, errMsg string) error {
	query := `
		UPDATE partition_moves
		SET attempts = attempts + 1,
			last_error = $1,
			status = CASE WHEN attempts + 1 >= $2 THEN $3 ELSE status END,
			updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, errMsg, models.MaxMoveAttempts, models.MoveStatusFailed, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *partitionMoveRepository) ListPending(ctx context.Context, olderThan time.Time, limit int) ([]*models.PartitionMove, error) {
	query := `SELECT ` + moveColumns + ` FROM partition_moves
		WHERE status = $1 AND updated_at < $2
		ORDER BY created_at ASC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, models.MoveStatusPending, olderThan, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var moves []*models.PartitionMove
	for rows.Next() {
		m, err := scanMove(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		moves = append(moves, m)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return moves, nil
}
