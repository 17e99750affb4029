package service

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/maheshrc27/contentflow/internal/models"
)

const bothPlatforms = "both"

// ParseDay parses a civil calendar date. The result is midnight UTC so the
// day key never shifts with the server's zone.
func ParseDay(s string) (time.Time, error) {
	d, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// NormalizeTime accepts HH:MM or HH:MM:SS and returns HH:MM.
func NormalizeTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{models.TimeLayout, "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(models.TimeLayout), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
}

// PlatformSet validates target platforms against the configured ones.
type PlatformSet struct {
	supported []string
	both      []string
}

func NewPlatformSet(supported, both []string) PlatformSet {
	return PlatformSet{supported: supported, both: both}
}

// Resolve expands the "both" pseudo platform, drops duplicates and rejects
// unknown platforms. Order of first appearance is kept.
func (p PlatformSet) Resolve(platforms []string) ([]string, error) {
	var resolved []string
	add := func(platform string) error {
		if !slices.Contains(p.supported, platform) {
			return fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
		}
		if !slices.Contains(resolved, platform) {
			resolved = append(resolved, platform)
		}
		return nil
	}

	for _, raw := range platforms {
		platform := strings.ToLower(strings.TrimSpace(raw))
		if platform == "" {
			continue
		}
		if platform == bothPlatforms {
			for _, b := range p.both {
				if err := add(b); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err := add(platform); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func belongsTo(post *models.Post, projectID string) bool {
	return post != nil && post.ProjectID != nil && *post.ProjectID == projectID
}

func strPtr(s string) *string {
	return &s
}
