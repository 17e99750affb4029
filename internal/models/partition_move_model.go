package models

import "time"

// PartitionMove records the pending removal of a post from its source
// partition after the post was written to the target partition.
type PartitionMove struct {
	ID        string    `db:"id" json:"id"`
	PostID    string    `db:"post_id" json:"post_id"`
	Source    Partition `db:"source" json:"source"`
	Target    Partition `db:"target" json:"target"`
	Status    string    `db:"status" json:"status"`
	Attempts  int       `db:"attempts" json:"attempts"`
	LastError string    `db:"last_error" json:"last_error"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

const (
	MoveStatusPending = "pending"
	MoveStatusDone    = "done"
	MoveStatusFailed  = "failed"
)

// MaxMoveAttempts is the number of source removals tried before an intent is
// parked as failed for manual follow-up.
const MaxMoveAttempts = 10
