package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePostKey(t *testing.T) {
	key, err := ParsePostKey("planner_scheduled:abc")
	require.NoError(t, err)
	assert.Equal(t, PostKey{Kind: KindPlannerScheduled, ID: "abc"}, key)
	assert.Equal(t, "planner_scheduled:abc", key.String())

	key, err = ParsePostKey("client-upload:u1")
	require.NoError(t, err)
	assert.Equal(t, KindClientUpload, key.Kind)
	assert.False(t, key.Kind.Scheduled())

	for _, bad := range []string{"", "abc", "story:1", "planner_scheduled:", "planner_scheduled:  "} {
		_, err := ParsePostKey(bad)
		assert.ErrorIs(t, err, ErrInvalidPostKey, bad)
	}
}

func TestPostKeyTextRoundTrip(t *testing.T) {
	var key PostKey
	require.NoError(t, key.UnmarshalText([]byte("calendar_scheduled:p9")))
	b, err := key.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "calendar_scheduled:p9", string(b))
}

func TestCalendarItemKeys(t *testing.T) {
	items := []CalendarItem{
		ScheduledItem{Kind: KindPlannerScheduled, Post: &Post{ID: "p1"}},
		UploadItem{Upload: &Upload{ID: "u1"}},
	}
	assert.Equal(t, "planner_scheduled:p1", items[0].Key().String())
	assert.Equal(t, "client_upload:u1", items[1].Key().String())
}

func TestGlobalTimeOverrideProtocol(t *testing.T) {
	var o GlobalTimeOverride
	assert.False(t, o.Locked())
	assert.ErrorIs(t, o.Apply(time.Now()), ErrNoTimeSelected)

	assert.True(t, o.Select("09:00"))
	assert.False(t, o.Locked(), "selection alone does not lock per-post edits")

	require.NoError(t, o.Apply(time.Now()))
	active, ok := o.ActiveTime()
	assert.True(t, ok)
	assert.Equal(t, "09:00", active)

	assert.False(t, o.Select("09:00"), "re-selecting the same value keeps the apply")
	assert.True(t, o.Locked())

	assert.True(t, o.Select("10:30"))
	assert.False(t, o.Applied)
	assert.Nil(t, o.AppliedAt)

	o.Clear()
	assert.Nil(t, o.SelectedTime)
	assert.False(t, o.Locked())
}

func TestPostDayKey(t *testing.T) {
	var p Post
	assert.Equal(t, "", p.DayKey())
	d := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	p.ScheduledDate = &d
	assert.Equal(t, "2025-03-10", p.DayKey())

	p.PlatformsScheduled = []string{"instagram"}
	assert.True(t, p.HasPlatformScheduled("instagram"))
	assert.False(t, p.HasPlatformScheduled("facebook"))
}
