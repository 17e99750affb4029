package models

import (
	"errors"
	"time"
)

var ErrNoTimeSelected = errors.New("no global time selected")

// GlobalTimeOverride is the staged-then-applied bulk time of a project.
// Selecting only stages a value; Apply marks it committed. Changing the
// selection after an apply resets Applied but never reverts posts.
type GlobalTimeOverride struct {
	ProjectID    string     `db:"project_id" json:"project_id"`
	SelectedTime *string    `db:"selected_time" json:"selected_time"`
	Applied      bool       `db:"applied" json:"applied"`
	AppliedAt    *time.Time `db:"applied_at" json:"applied_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Select stages t. It reports whether the selection changed.
func (o *GlobalTimeOverride) Select(t string) bool {
	if o.SelectedTime != nil && *o.SelectedTime == t {
		return false
	}
	o.SelectedTime = &t
	o.Applied = false
	o.AppliedAt = nil
	return true
}

func (o *GlobalTimeOverride) Apply(now time.Time) error {
	if o.SelectedTime == nil {
		return ErrNoTimeSelected
	}
	o.Applied = true
	o.AppliedAt = &now
	return nil
}

func (o *GlobalTimeOverride) Clear() {
	o.SelectedTime = nil
	o.Applied = false
	o.AppliedAt = nil
}

// Locked reports whether per-post time edits are blocked.
func (o *GlobalTimeOverride) Locked() bool {
	return o != nil && o.Applied && o.SelectedTime != nil
}

// ActiveTime returns the applied override time, if any.
func (o *GlobalTimeOverride) ActiveTime() (string, bool) {
	if !o.Locked() {
		return "", false
	}
	return *o.SelectedTime, true
}
