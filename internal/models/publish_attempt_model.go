package models

import "time"

type PublishAttempt struct {
	ID           int64     `db:"id" json:"id"`
	PostID       string    `db:"post_id" json:"post_id"`
	Platform     string    `db:"platform" json:"platform"`
	Succeeded    bool      `db:"succeeded" json:"succeeded"`
	ExternalID   string    `db:"external_id" json:"external_id"`
	ErrorMessage string    `db:"error_message" json:"error_message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
