package service

import (
	"context"
	"testing"
	"time"

	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plannerKey(id string) models.PostKey {
	return models.PostKey{Kind: models.KindPlannerScheduled, ID: id}
}

func decision(status string) Decision {
	return Decision{Status: status, Actor: "client:" + clientA}
}

func TestApplyDecisionTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		want     error
	}{
		{models.ApprovalPending, models.ApprovalApproved, nil},
		{models.ApprovalPending, models.ApprovalRejected, nil},
		{models.ApprovalPending, models.ApprovalNeedsAttention, nil},
		{models.ApprovalApproved, models.ApprovalApproved, nil},
		{models.ApprovalRejected, models.ApprovalRejected, nil},
		{models.ApprovalApproved, models.ApprovalRejected, ErrInvalidTransition},
		{models.ApprovalRejected, models.ApprovalApproved, ErrInvalidTransition},
		{models.ApprovalNeedsAttention, models.ApprovalApproved, ErrInvalidTransition},
		{models.ApprovalDraft, models.ApprovalApproved, ErrInvalidTransition},
		{models.ApprovalPending, models.ApprovalPending, ErrInvalidRequest},
		{models.ApprovalPending, "maybe", ErrInvalidRequest},
	}
	for _, tc := range cases {
		t.Run(tc.from+"->"+tc.to, func(t *testing.T) {
			post := &models.Post{ApprovalStatus: tc.from}
			err := applyDecision(post, Decision{Status: tc.to})
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
				assert.Equal(t, tc.from, post.ApprovalStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.to, post.ApprovalStatus)
		})
	}
}

func TestDecideStoresFeedback(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedScheduled("s1", "2025-03-10", "09:00", models.ApprovalPending, "instagram")

	comment := "too long"
	d := decision(models.ApprovalRejected)
	d.Comment = &comment
	post, err := f.approvals.Decide(ctx, clientA, "s1", d)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, post.ApprovalStatus)
	assert.Equal(t, "too long", *post.ClientFeedback)

	again := "still too long"
	d.Comment = &again
	post, err = f.approvals.Decide(ctx, clientA, "s1", d)
	require.NoError(t, err, "repeating the decision is idempotent")
	assert.Equal(t, "still too long", *post.ClientFeedback)

	_, err = f.approvals.Decide(ctx, clientA, "s1", decision(models.ApprovalApproved))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 409, Classify(err).Status)
}

func TestDecideIsScopedToClient(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedScheduled("s1", "2025-03-10", "09:00", models.ApprovalPending, "instagram")

	_, err := f.approvals.Decide(ctx, "client-b", "s1", decision(models.ApprovalApproved))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.approvals.Decide(ctx, clientA, "missing", decision(models.ApprovalApproved))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReviewRequiresMatchingKind(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedScheduled("s1", "2025-03-10", "09:00", models.ApprovalPending, "instagram")
	writes := f.posts.updates

	_, err := f.approvals.Review(ctx, clientA,
		models.PostKey{Kind: models.KindCalendarScheduled, ID: "s1"}, Review{Decision: decision(models.ApprovalApproved)})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, writes, f.posts.updates)

	stored, err := f.posts.GetScheduled(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, stored.ApprovalStatus)
}

func TestDecideResolvesCalendarPosts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	post := f.seedScheduled("c1", "2025-03-10", "09:00", models.ApprovalPending, "instagram")
	post.ProjectID = nil
	require.NoError(t, f.posts.UpdateScheduled(ctx, post))

	decided, err := f.approvals.Decide(ctx, clientA, "c1", decision(models.ApprovalApproved))
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, decided.ApprovalStatus)

	_, err = f.approvals.Review(ctx, clientA, plannerKey("c1"), Review{Decision: decision(models.ApprovalApproved)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReviewRejectsUploadKeys(t *testing.T) {
	f := newFixture()

	_, err := f.approvals.Review(context.Background(), clientA,
		models.PostKey{Kind: models.KindClientUpload, ID: "u1"}, Review{Decision: decision(models.ApprovalApproved)})
	assert.ErrorIs(t, err, ErrNotApprovable)
}

func TestCaptionEditOnApprovedPostRaisesReapproval(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedScheduled("s1", "2025-03-10", "09:00", models.ApprovalApproved, "instagram")
	original := "caption s1"

	post, err := f.approvals.EditCaption(ctx, clientA, "s1", "New words", "agency:7")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, post.ApprovalStatus, "the status is advisory only")
	assert.True(t, post.NeedsReapproval)
	assert.Equal(t, 1, post.EditCount)
	assert.Equal(t, original, *post.OriginalCaption)
	assert.Equal(t, "agency:7", *post.LastEditedBy)
	assert.NotNil(t, post.LastEditedAt)

	post, err = f.approvals.EditCaption(ctx, clientA, "s1", original, "agency:7")
	require.NoError(t, err)
	assert.True(t, post.NeedsReapproval, "editing back never clears the flag")
	assert.Equal(t, 2, post.EditCount)
	assert.Equal(t, original, *post.OriginalCaption, "only the first edit records the original")
}

func TestIdenticalCaptionIsNoop(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedScheduled("s1", "2025-03-10", "09:00", models.ApprovalApproved, "instagram")
	before := f.posts.updates

	post, err := f.approvals.EditCaption(ctx, clientA, "s1", "caption s1", "agency:7")
	require.NoError(t, err)
	assert.False(t, post.NeedsReapproval)
	assert.Zero(t, post.EditCount)
	assert.Nil(t, post.OriginalCaption)
	assert.Equal(t, before, f.posts.updates, "nothing is written")
}

func TestCaptionEditOnPendingPostDoesNotFlag(t *testing.T) {
	post := &models.Post{Caption: "a", ApprovalStatus: models.ApprovalPending}
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.True(t, applyCaptionEdit(post, "b", "", now))
	assert.False(t, post.NeedsReapproval)
	assert.Nil(t, post.LastEditedBy)
	assert.Equal(t, now, *post.LastEditedAt)
}

func TestReviewAppliesEditThenDecisionInOneWrite(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedScheduled("s1", "2025-03-10", "09:00", models.ApprovalPending, "instagram")
	before := f.posts.updates

	edited := "Client wording"
	post, err := f.approvals.Review(ctx, clientA, plannerKey("s1"), Review{
		Decision:      decision(models.ApprovalApproved),
		EditedCaption: &edited,
	})
	require.NoError(t, err)
	assert.Equal(t, "Client wording", post.Caption)
	assert.Equal(t, models.ApprovalApproved, post.ApprovalStatus)
	assert.False(t, post.NeedsReapproval)
	assert.Equal(t, "client:"+clientA, *post.LastEditedBy)
	assert.Equal(t, before+1, f.posts.updates)
}

func TestReviewWritesNothingWhenDecisionFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedScheduled("s1", "2025-03-10", "09:00", models.ApprovalRejected, "instagram")

	edited := "Client wording"
	_, err := f.approvals.Review(ctx, clientA, plannerKey("s1"), Review{
		Decision:      decision(models.ApprovalApproved),
		EditedCaption: &edited,
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := f.posts.GetScheduled(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "caption s1", stored.Caption)
	assert.Zero(t, stored.EditCount)
}

func TestResubmitThenApproveClearsReapproval(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedScheduled("s1", "2025-03-10", "09:00", models.ApprovalRejected, "instagram")

	_, err := f.approvals.EditCaption(ctx, clientA, "s1", "Fixed caption", "agency:7")
	require.NoError(t, err)

	post, err := f.approvals.Resubmit(ctx, clientA, "s1", "agency:7")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, post.ApprovalStatus)
	assert.True(t, post.NeedsReapproval, "the flag survives a resubmit")

	post, err = f.approvals.Decide(ctx, clientA, "s1", decision(models.ApprovalApproved))
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, post.ApprovalStatus)
	assert.False(t, post.NeedsReapproval)
}

func TestResubmitPendingIsNoop(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedScheduled("s1", "2025-03-10", "09:00", models.ApprovalPending, "instagram")
	before := f.posts.updates

	post, err := f.approvals.Resubmit(ctx, clientA, "s1", "agency:7")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, post.ApprovalStatus)
	assert.Equal(t, before, f.posts.updates)
}
