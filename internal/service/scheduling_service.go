package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jinzhu/copier"
	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/repository"
)

type ScheduleInput struct {
	UnscheduledPostID string
	ScheduledDate     string
	ScheduledTime     string
	Platforms         []string
}

type SchedulingService interface {
	Schedule(ctx context.Context, userID int64, projectID string, in ScheduleInput) (*models.Post, error)
	ListScheduled(ctx context.Context, userID int64, projectID string) ([]*models.Post, error)
	GetScheduled(ctx context.Context, userID int64, projectID, postID string) (*models.Post, error)
	UpdateTime(ctx context.Context, userID int64, projectID, postID, scheduledTime string) (*models.Post, error)
	Unschedule(ctx context.Context, userID int64, projectID, postID string, purge bool) error

	GetGlobalTime(ctx context.Context, userID int64, projectID string) (*models.GlobalTimeOverride, error)
	SelectGlobalTime(ctx context.Context, userID int64, projectID, selected string) (*models.GlobalTimeOverride, error)
	ApplyGlobalTime(ctx context.Context, userID int64, projectID string, postIDs []string) (int64, error)
	ClearGlobalTime(ctx context.Context, userID int64, projectID string) error
}

type schedulingService struct {
	posts     repository.PostRepository
	overrides repository.GlobalTimeRepository
	mover     *PartitionMover
	guard     OwnershipGuard
	platforms PlatformSet
}

func NewSchedulingService(
	posts repository.PostRepository,
	overrides repository.GlobalTimeRepository,
	mover *PartitionMover,
	guard OwnershipGuard,
	platforms PlatformSet) SchedulingService {
	return &schedulingService{
		posts:     posts,
		overrides: overrides,
		mover:     mover,
		guard:     guard,
		platforms: platforms,
	}
}

func (s *schedulingService) Schedule(ctx context.Context, userID int64, projectID string, in ScheduleInput) (*models.Post, error) {
	if _, err := s.guard.AuthorizeProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	if in.UnscheduledPostID == "" {
		return nil, fmt.Errorf("%w: unscheduledPostId is required", ErrInvalidRequest)
	}
	platforms, err := s.platforms.Resolve(in.Platforms)
	if err != nil {
		return nil, err
	}
	if len(platforms) == 0 {
		return nil, fmt.Errorf("%w: at least one platform is required", ErrInvalidRequest)
	}
	day, err := ParseDay(in.ScheduledDate)
	if err != nil {
		return nil, err
	}
	at, err := NormalizeTime(in.ScheduledTime)
	if err != nil {
		return nil, err
	}

	source, err := s.posts.GetUnscheduled(ctx, in.UnscheduledPostID)
	if err != nil {
		return nil, storeErr("get unscheduled post", err)
	}
	if source == nil {
		existing, err := s.posts.GetScheduled(ctx, in.UnscheduledPostID)
		if err != nil {
			return nil, storeErr("get scheduled post", err)
		}
		if belongsTo(existing, projectID) {
			return nil, ErrAlreadyScheduled
		}
		return nil, ErrNotFound
	}
	if !belongsTo(source, projectID) {
		return nil, ErrNotFound
	}

	scheduled := &models.Post{}
	if err := copier.Copy(scheduled, source); err != nil {
		return nil, fmt.Errorf("copy post: %w", err)
	}
	scheduled.Status = models.PostStatusScheduled
	scheduled.ApprovalStatus = models.ApprovalPending
	scheduled.NeedsReapproval = false
	scheduled.ScheduledDate = &day
	scheduled.ScheduledTime = &at
	scheduled.Platforms = platforms
	scheduled.PlatformsScheduled = nil
	scheduled.LateStatus = nil
	scheduled.LatePostID = nil

	if _, err := s.mover.Move(ctx, scheduled, models.PartitionUnscheduled, models.PartitionScheduled); err != nil {
		return nil, err
	}

	slog.Info("post scheduled", "post_id", scheduled.ID, "project_id", projectID, "date", in.ScheduledDate, "time", at)
	return scheduled, nil
}

func (s *schedulingService) ListScheduled(ctx context.Context, userID int64, projectID string) ([]*models.Post, error) {
	if _, err := s.guard.AuthorizeProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	posts, err := s.posts.ListScheduled(ctx, projectID)
	if err != nil {
		return nil, storeErr("list scheduled posts", err)
	}
	return posts, nil
}

func (s *schedulingService) GetScheduled(ctx context.Context, userID int64, projectID, postID string) (*models.Post, error) {
	if _, err := s.guard.AuthorizeProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.scheduledInProject(ctx, projectID, postID)
}

func (s *schedulingService) scheduledInProject(ctx context.Context, projectID, postID string) (*models.Post, error) {
	if postID == "" {
		return nil, fmt.Errorf("%w: postId is required", ErrInvalidRequest)
	}

	post, err := s.posts.GetScheduled(ctx, postID)
	if err != nil {
		return nil, storeErr("get scheduled post", err)
	}
	if !belongsTo(post, projectID) {
		return nil, ErrNotFound
	}
	return post, nil
}

func (s *schedulingService) UpdateTime(ctx context.Context, userID int64, projectID, postID, scheduledTime string) (*models.Post, error) {
	if _, err := s.guard.AuthorizeProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	at, err := NormalizeTime(scheduledTime)
	if err != nil {
		return nil, err
	}

	post, err := s.scheduledInProject(ctx, projectID, postID)
	if err != nil {
		return nil, err
	}

	override, err := s.overrides.GetByProjectID(ctx, projectID)
	if err != nil {
		return nil, storeErr("get global time", err)
	}
	if override.Locked() {
		return nil, ErrTimeLocked
	}

	post.ScheduledTime = &at
	if err := s.posts.UpdateScheduled(ctx, post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr("update scheduled time", err)
	}
	return post, nil
}

// Unschedule moves a scheduled post back to the unscheduled partition as a
// ready draft. With purge the post is destroyed instead.
func (s *schedulingService) Unschedule(ctx context.Context, userID int64, projectID, postID string, purge bool) error {
	if _, err := s.guard.AuthorizeProject(ctx, userID, projectID); err != nil {
		return err
	}

	post, err := s.scheduledInProject(ctx, projectID, postID)
	if err != nil {
		return err
	}

	if purge {
		if err := s.posts.RemoveScheduled(ctx, nil, post.ID); err != nil {
			return storeErr("purge scheduled post", err)
		}
		slog.Info("scheduled post purged", "post_id", post.ID, "project_id", projectID)
		return nil
	}

	back := &models.Post{}
	if err := copier.Copy(back, post); err != nil {
		return fmt.Errorf("copy post: %w", err)
	}
	back.Status = models.PostStatusReady
	back.ApprovalStatus = models.ApprovalDraft
	back.NeedsReapproval = false
	back.ScheduledDate = nil
	back.ScheduledTime = nil

	if _, err := s.mover.Move(ctx, back, models.PartitionScheduled, models.PartitionUnscheduled); err != nil {
		return err
	}
	slog.Info("post unscheduled", "post_id", post.ID, "project_id", projectID)
	return nil
}
