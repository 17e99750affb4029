package service

import (
	"context"
	"testing"

	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/publisher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Draft to published: plan, schedule, client approval, partial publish.
func TestDraftToPublishedScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	image := "img://1"

	draft, err := f.planner.CreateDraft(ctx, ownerID, projectA, DraftInput{
		Caption:  "Hello",
		ImageURL: &image,
		Status:   models.PostStatusReady,
	})
	require.NoError(t, err)

	scheduled, err := f.scheduling.Schedule(ctx, ownerID, projectA, ScheduleInput{
		UnscheduledPostID: draft.ID,
		ScheduledDate:     "2025-03-10",
		ScheduledTime:     "09:00",
		Platforms:         []string{"instagram", "facebook"},
	})
	require.NoError(t, err)
	assert.Equal(t, draft.ID, scheduled.ID)
	assert.Equal(t, models.ApprovalPending, scheduled.ApprovalStatus)
	assert.Equal(t, []string{"instagram", "facebook"}, scheduled.Platforms)

	approved, err := f.approvals.Review(ctx, clientA, plannerKey(scheduled.ID), Review{
		Decision: Decision{Status: models.ApprovalApproved, Actor: "client:" + clientA},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, approved.ApprovalStatus)

	f.publisher.fail["facebook"] = &publisher.APIError{StatusCode: 502, Message: "upstream unavailable"}
	result, err := f.publish.Publish(ctx, ownerID, projectA, scheduled.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"instagram"}, result.PlatformsScheduled)
	assert.Equal(t, models.PostStatusPublished, result.Status)
	assert.Equal(t, models.LateStatusPublished, result.LateStatus)

	final, err := f.posts.GetScheduled(ctx, scheduled.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", final.Caption)
	assert.Equal(t, image, *final.ImageURL)
	assert.Equal(t, models.PostStatusPublished, final.Status)

	calendar, err := f.calendar.ClientCalendar(ctx, clientA, "2025-03-01", "2025-03-31", true)
	require.NoError(t, err)
	require.Len(t, calendar["2025-03-10"], 1)
	assert.Equal(t, "planner_scheduled:"+scheduled.ID, calendar["2025-03-10"][0].Key().String())
}
