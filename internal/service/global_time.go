package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/contentflow/internal/models"
)

func (s *schedulingService) loadOverride(ctx context.Context, projectID string) (*models.GlobalTimeOverride, error) {
	override, err := s.overrides.GetByProjectID(ctx, projectID)
	if err != nil {
		return nil, storeErr("get global time", err)
	}
	if override == nil {
		override = &models.GlobalTimeOverride{ProjectID: projectID}
	}
	return override, nil
}

func (s *schedulingService) GetGlobalTime(ctx context.Context, userID int64, projectID string) (*models.GlobalTimeOverride, error) {
	if _, err := s.guard.AuthorizeProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.loadOverride(ctx, projectID)
}

// SelectGlobalTime stages a time. No post changes until ApplyGlobalTime.
func (s *schedulingService) SelectGlobalTime(ctx context.Context, userID int64, projectID, selected string) (*models.GlobalTimeOverride, error) {
	if _, err := s.guard.AuthorizeProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	at, err := NormalizeTime(selected)
	if err != nil {
		return nil, err
	}

	override, err := s.loadOverride(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !override.Select(at) {
		return override, nil
	}

	if err := s.overrides.Save(ctx, override); err != nil {
		return nil, storeErr("save global time", err)
	}
	return override, nil
}

// ApplyGlobalTime writes the selected time to every post currently scheduled
// in the project, or only to postIDs when given. Posts scheduled later keep
// their own time.
func (s *schedulingService) ApplyGlobalTime(ctx context.Context, userID int64, projectID string, postIDs []string) (int64, error) {
	if _, err := s.guard.AuthorizeProject(ctx, userID, projectID); err != nil {
		return 0, err
	}

	override, err := s.loadOverride(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if err := override.Apply(time.Now()); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	count, err := s.posts.UpdateScheduledTimes(ctx, projectID, postIDs, *override.SelectedTime)
	if err != nil {
		return 0, storeErr("apply global time", err)
	}

	if err := s.overrides.Save(ctx, override); err != nil {
		return 0, storeErr("save global time", err)
	}

	slog.Info("global time applied", "project_id", projectID, "time", *override.SelectedTime, "posts", count)
	return count, nil
}

func (s *schedulingService) ClearGlobalTime(ctx context.Context, userID int64, projectID string) error {
	if _, err := s.guard.AuthorizeProject(ctx, userID, projectID); err != nil {
		return err
	}

	if err := s.overrides.Remove(ctx, projectID); err != nil {
		return storeErr("clear global time", err)
	}
	return nil
}
