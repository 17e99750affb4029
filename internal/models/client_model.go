package models

import "time"

type Client struct {
	ID            string    `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	Name          string    `db:"name" json:"name"`
	LateProfileID string    `db:"late_profile_id" json:"late_profile_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

type Project struct {
	ID        string    `db:"id" json:"id"`
	ClientID  string    `db:"client_id" json:"client_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type PortalToken struct {
	ID        int64     `db:"id" json:"id"`
	ClientID  string    `db:"client_id" json:"client_id"`
	Token     string    `db:"token" json:"token"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
