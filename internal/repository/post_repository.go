package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/maheshrc27/contentflow/internal/models"
)

// PostRepository stores posts in two partitions, unscheduled_posts and
// scheduled_posts, keyed by the same post id. Rows with an unfinished move
// out of their partition are hidden from every read.
type PostRepository interface {
	CreateUnscheduled(ctx context.Context, tx *sql.Tx, post *models.Post) error
	GetUnscheduled(ctx context.Context, id string) (*models.Post, error)
	ListUnscheduled(ctx context.Context, projectID string) ([]*models.Post, error)
	UpdateUnscheduled(ctx context.Context, post *models.Post) error
	RemoveUnscheduled(ctx context.Context, tx *sql.Tx, id string) error

	CreateScheduled(ctx context.Context, tx *sql.Tx, post *models.Post) error
	GetScheduled(ctx context.Context, id string) (*models.Post, error)
	ListScheduled(ctx context.Context, projectID string) ([]*models.Post, error)
	ListScheduledByClient(ctx context.Context, clientID string, start, end time.Time) ([]*models.Post, error)
	UpdateScheduled(ctx context.Context, post *models.Post) error
	UpdateScheduledTimes(ctx context.Context, projectID string, postIDs []string, scheduledTime string) (int64, error)
	RemoveScheduled(ctx context.Context, tx *sql.Tx, id string) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, project_id, client_id, caption, original_caption, image_url, status,
	scheduled_date, scheduled_time, platforms, approval_status, client_feedback, needs_reapproval,
	edit_count, last_edited_at, last_edited_by, platforms_scheduled, late_status, late_post_id,
	created_at, updated_at`

func tableFor(partition models.Partition) string {
	if partition == models.PartitionScheduled {
		return "scheduled_posts"
	}
	return "unscheduled_posts"
}

func visible(partition models.Partition) string {
	return fmt.Sprintf(`NOT EXISTS (
		SELECT 1 FROM partition_moves m
		WHERE m.post_id = p.id AND m.source = '%s' AND m.status <> 'done'
	)`, partition)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	err := row.Scan(
		&post.ID, &post.ProjectID, &post.ClientID, &post.Caption, &post.OriginalCaption, &post.ImageURL, &post.Status,
		&post.ScheduledDate, &post.ScheduledTime, pq.Array(&post.Platforms), &post.ApprovalStatus, &post.ClientFeedback,
		&post.NeedsReapproval, &post.EditCount, &post.LastEditedAt, &post.LastEditedBy, pq.Array(&post.PlatformsScheduled),
		&post.LateStatus, &post.LatePostID, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) insert(ctx context.Context, tx *sql.Tx, partition models.Partition, post *models.Post) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`, tableFor(partition), postColumns)

	now := time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now

	_, err := conn(r.db, tx).ExecContext(ctx, query,
		post.ID, post.ProjectID, post.ClientID, post.Caption, post.OriginalCaption, post.ImageURL, post.Status,
		post.ScheduledDate, post.ScheduledTime, pq.Array(nonNil(post.Platforms)), post.ApprovalStatus, post.ClientFeedback,
		post.NeedsReapproval, post.EditCount, post.LastEditedAt, post.LastEditedBy, pq.Array(nonNil(post.PlatformsScheduled)),
		post.LateStatus, post.LatePostID, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) get(ctx context.Context, partition models.Partition, id string) (*models.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s p WHERE p.id = $1 AND %s`, postColumns, tableFor(partition), visible(partition))

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) list(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) update(ctx context.Context, partition models.Partition, post *models.Post) error {
	query := fmt.Sprintf(`
		UPDATE %s p
		SET caption = $1,
			original_caption = $2,
			image_url = $3,
			status = $4,
			scheduled_date = $5,
			scheduled_time = $6,
			platforms = $7,
			approval_status = $8,
			client_feedback = $9,
			needs_reapproval = $10,
			edit_count = $11,
			last_edited_at = $12,
			last_edited_by = $13,
			platforms_scheduled = $14,
			late_status = $15,
			late_post_id = $16,
			updated_at = $17
		WHERE p.id = $18 AND %s
	`, tableFor(partition), visible(partition))

	post.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		post.Caption, post.OriginalCaption, post.ImageURL, post.Status, post.ScheduledDate, post.ScheduledTime,
		pq.Array(nonNil(post.Platforms)), post.ApprovalStatus, post.ClientFeedback, post.NeedsReapproval, post.EditCount,
		post.LastEditedAt, post.LastEditedBy, pq.Array(nonNil(post.PlatformsScheduled)), post.LateStatus, post.LatePostID,
		post.UpdatedAt, post.ID,
	)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return checkAffected(result)
}

func (r *postRepository) remove(ctx context.Context, tx *sql.Tx, partition models.Partition, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, tableFor(partition))
	_, err := conn(r.db, tx).ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) CreateUnscheduled(ctx context.Context, tx *sql.Tx, post *models.Post) error {
	return r.insert(ctx, tx, models.PartitionUnscheduled, post)
}

func (r *postRepository) GetUnscheduled(ctx context.Context, id string) (*models.Post, error) {
	return r.get(ctx, models.PartitionUnscheduled, id)
}

func (r *postRepository) ListUnscheduled(ctx context.Context, projectID string) ([]*models.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM unscheduled_posts p WHERE p.project_id = $1 AND %s ORDER BY p.created_at DESC`,
		postColumns, visible(models.PartitionUnscheduled))
	return r.list(ctx, query, projectID)
}

func (r *postRepository) UpdateUnscheduled(ctx context.Context, post *models.Post) error {
	return r.update(ctx, models.PartitionUnscheduled, post)
}

func (r *postRepository) RemoveUnscheduled(ctx context.Context, tx *sql.Tx, id string) error {
	return r.remove(ctx, tx, models.PartitionUnscheduled, id)
}

func (r *postRepository) CreateScheduled(ctx context.Context, tx *sql.Tx, post *models.Post) error {
	return r.insert(ctx, tx, models.PartitionScheduled, post)
}

func (r *postRepository) GetScheduled(ctx context.Context, id string) (*models.Post, error) {
	return r.get(ctx, models.PartitionScheduled, id)
}

func (r *postRepository) ListScheduled(ctx context.Context, projectID string) ([]*models.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM scheduled_posts p WHERE p.project_id = $1 AND %s
		ORDER BY p.scheduled_date ASC, p.scheduled_time ASC NULLS LAST, p.created_at ASC`,
		postColumns, visible(models.PartitionScheduled))
	return r.list(ctx, query, projectID)
}

func (r *postRepository) ListScheduledByClient(ctx context.Context, clientID string, start, end time.Time) ([]*models.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM scheduled_posts p
		WHERE p.client_id = $1 AND p.scheduled_date >= $2 AND p.scheduled_date <= $3 AND %s
		ORDER BY p.scheduled_date ASC, p.scheduled_time ASC NULLS LAST, p.created_at ASC`,
		postColumns, visible(models.PartitionScheduled))
	return r.list(ctx, query, clientID, start, end)
}

func (r *postRepository) UpdateScheduled(ctx context.Context, post *models.Post) error {
	return r.update(ctx, models.PartitionScheduled, post)
}

// UpdateScheduledTimes sets scheduled_time on every not yet published post of
// the project, restricted to postIDs when given.
func (r *postRepository) UpdateScheduledTimes(ctx context.Context, projectID string, postIDs []string, scheduledTime string) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE scheduled_posts p
		SET scheduled_time = $1,
			updated_at = $2
		WHERE p.project_id = $3 AND p.status = $4 AND (cardinality($5::text[]) = 0 OR p.id = ANY($5)) AND %s
	`, visible(models.PartitionScheduled))

	result, err := r.db.ExecContext(ctx, query, scheduledTime, time.Now(), projectID, models.PostStatusScheduled, pq.Array(nonNil(postIDs)))
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return affected, nil
}

func (r *postRepository) RemoveScheduled(ctx context.Context, tx *sql.Tx, id string) error {
	return r.remove(ctx, tx, models.PartitionScheduled, id)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
