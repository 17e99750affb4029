package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

type PostKind string

const (
	KindPlannerScheduled  PostKind = "planner_scheduled"
	KindCalendarScheduled PostKind = "calendar_scheduled"
	KindClientUpload      PostKind = "client_upload"
)

var ErrInvalidPostKey = errors.New("invalid post key")

func ParsePostKind(s string) (PostKind, error) {
	switch k := PostKind(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")); k {
	case KindPlannerScheduled, KindCalendarScheduled, KindClientUpload:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidPostKey, s)
	}
}

// Scheduled reports whether posts of this kind live in the scheduled partition.
func (k PostKind) Scheduled() bool {
	return k == KindPlannerScheduled || k == KindCalendarScheduled
}

// PostKey identifies a calendar item across the post kinds that share an
// id space.
type PostKey struct {
	Kind PostKind `json:"kind"`
	ID   string   `json:"id"`
}

func NewPostKey(kind, id string) (PostKey, error) {
	k, err := ParsePostKind(kind)
	if err != nil {
		return PostKey{}, err
	}
	if strings.TrimSpace(id) == "" {
		return PostKey{}, fmt.Errorf("%w: empty id", ErrInvalidPostKey)
	}
	return PostKey{Kind: k, ID: strings.TrimSpace(id)}, nil
}

// ParsePostKey parses the "kind:id" text form.
func ParsePostKey(s string) (PostKey, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok {
		return PostKey{}, fmt.Errorf("%w: %q", ErrInvalidPostKey, s)
	}
	return NewPostKey(kind, id)
}

func (k PostKey) String() string {
	return string(k.Kind) + ":" + k.ID
}

func (k PostKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PostKey) UnmarshalText(b []byte) error {
	parsed, err := ParsePostKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// CalendarItem is implemented by ScheduledItem and UploadItem only.
type CalendarItem interface {
	Key() PostKey
	calendarItem()
}

type ScheduledItem struct {
	Kind PostKind `json:"post_type"`
	Post *Post    `json:"post"`
}

func (i ScheduledItem) Key() PostKey { return PostKey{Kind: i.Kind, ID: i.Post.ID} }
func (ScheduledItem) calendarItem()  {}

type UploadItem struct {
	Upload *Upload `json:"upload"`
}

func (i UploadItem) Key() PostKey { return PostKey{Kind: KindClientUpload, ID: i.Upload.ID} }
func (UploadItem) calendarItem()  {}

// KindOf reports the calendar kind of a scheduled post. Posts planned inside
// a project are planner posts; the rest were placed on the calendar directly.
func KindOf(p *Post) PostKind {
	if p.ProjectID == nil {
		return KindCalendarScheduled
	}
	return KindPlannerScheduled
}

func (i UploadItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind   PostKind `json:"post_type"`
		Upload *Upload  `json:"upload"`
	}{KindClientUpload, i.Upload})
}
