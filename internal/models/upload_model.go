package models

import "time"

type Upload struct {
	ID        string    `db:"id" json:"id"`
	ClientID  string    `db:"client_id" json:"client_id"`
	ProjectID *string   `db:"project_id" json:"project_id"`
	FileURL   string    `db:"file_url" json:"file_url"`
	FileType  string    `db:"file_type" json:"file_type"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	Notes     string    `db:"notes" json:"notes"`
	Status    string    `db:"status" json:"status"`
	PostID    *string   `db:"post_id" json:"post_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

const (
	UploadStatusPending    = "pending"
	UploadStatusProcessing = "processing"
	UploadStatusCompleted  = "completed"
	UploadStatusFailed     = "failed"
)
