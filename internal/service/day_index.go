package service

import (
	"sort"

	"github.com/maheshrc27/contentflow/internal/models"
)

// DayIndex buckets scheduled posts by their civil scheduled date. Every
// dated post sits in exactly one bucket. An index is built from a snapshot
// and never mutated; callers rebuild it when the post set changes.
type DayIndex struct {
	buckets map[string][]*models.Post
	days    map[string]string
	posts   map[string]*models.Post
}

func BuildDayIndex(posts []*models.Post) *DayIndex {
	ix := &DayIndex{
		buckets: make(map[string][]*models.Post),
		days:    make(map[string]string),
		posts:   make(map[string]*models.Post),
	}
	for _, p := range posts {
		day := p.DayKey()
		if day == "" {
			continue
		}
		if _, seen := ix.days[p.ID]; seen {
			continue
		}
		ix.buckets[day] = append(ix.buckets[day], p)
		ix.days[p.ID] = day
		ix.posts[p.ID] = p
	}
	return ix
}

// BucketOf returns the day holding key. Upload keys never have a bucket, and
// a key whose kind differs from the indexed post's kind does not resolve.
func (ix *DayIndex) BucketOf(key models.PostKey) (string, bool) {
	if !key.Kind.Scheduled() {
		return "", false
	}
	p, ok := ix.posts[key.ID]
	if !ok || models.KindOf(p) != key.Kind {
		return "", false
	}
	return ix.days[key.ID], true
}

func (ix *DayIndex) Post(id string) (*models.Post, bool) {
	p, ok := ix.posts[id]
	return p, ok
}

func (ix *DayIndex) Posts(day string) []*models.Post {
	return ix.buckets[day]
}

// Days returns the non-empty buckets in ascending order.
func (ix *DayIndex) Days() []string {
	days := make([]string, 0, len(ix.buckets))
	for day := range ix.buckets {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}

func (ix *DayIndex) Len() int {
	return len(ix.posts)
}

// ResolveTarget turns a drop target into a day. The target is either a day
// id or the key of a post already on the calendar, in which case that
// post's day is used.
func (ix *DayIndex) ResolveTarget(target string) (string, error) {
	if day, err := ParseDay(target); err == nil {
		return models.DayKey(day), nil
	}

	key, err := models.ParsePostKey(target)
	if err != nil {
		return "", ErrInvalidDropTarget
	}
	day, ok := ix.BucketOf(key)
	if !ok {
		return "", ErrInvalidDropTarget
	}
	return day, nil
}
