package models

import "time"

// Post is a single piece of client content. The same ID is kept while the
// post moves between the unscheduled and scheduled partitions.
type Post struct {
	ID                 string     `db:"id" json:"id"`
	ProjectID          *string    `db:"project_id" json:"project_id"`
	ClientID           string     `db:"client_id" json:"client_id"`
	Caption            string     `db:"caption" json:"caption"`
	OriginalCaption    *string    `db:"original_caption" json:"original_caption"`
	ImageURL           *string    `db:"image_url" json:"image_url"`
	Status             string     `db:"status" json:"status"`
	ScheduledDate      *time.Time `db:"scheduled_date" json:"scheduled_date"`
	ScheduledTime      *string    `db:"scheduled_time" json:"scheduled_time"`
	Platforms          []string   `db:"platforms" json:"platforms"`
	ApprovalStatus     string     `db:"approval_status" json:"approval_status"`
	ClientFeedback     *string    `db:"client_feedback" json:"client_feedback"`
	NeedsReapproval    bool       `db:"needs_reapproval" json:"needs_reapproval"`
	EditCount          int        `db:"edit_count" json:"edit_count"`
	LastEditedAt       *time.Time `db:"last_edited_at" json:"last_edited_at"`
	LastEditedBy       *string    `db:"last_edited_by" json:"last_edited_by"`
	PlatformsScheduled []string   `db:"platforms_scheduled" json:"platforms_scheduled"`
	LateStatus         *string    `db:"late_status" json:"late_status"`
	LatePostID         *string    `db:"late_post_id" json:"late_post_id"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// DayKey returns the calendar bucket of a scheduled post, or "" when the
// post has no date.
func (p *Post) DayKey() string {
	if p.ScheduledDate == nil {
		return ""
	}
	return DayKey(*p.ScheduledDate)
}

// HasPlatformScheduled reports whether the publishing service already
// accepted the post for platform.
func (p *Post) HasPlatformScheduled(platform string) bool {
	for _, ps := range p.PlatformsScheduled {
		if ps == platform {
			return true
		}
	}
	return false
}

type Partition string

const (
	PartitionUnscheduled Partition = "unscheduled"
	PartitionScheduled   Partition = "scheduled"
)

const (
	PostStatusDraft     = "draft"
	PostStatusReady     = "ready"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
	PostStatusDeleted   = "deleted"
)

const (
	ApprovalPending        = "pending"
	ApprovalApproved       = "approved"
	ApprovalRejected       = "rejected"
	ApprovalNeedsAttention = "needs_attention"
	ApprovalDraft          = "draft"
)

const (
	LateStatusPublished = "published"
	LateStatusFailed    = "failed"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

func DayKey(t time.Time) string {
	return t.Format(DateLayout)
}
