package models

import (
	"time"
)

const StatusActive = 1

// RefreshTokenPlaceholder is stored on a fresh account until the first token
// pair is issued; it never parses as a valid token.
const RefreshTokenPlaceholder = "unset"

type User struct {
	ID           int64     `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Email        string    `db:"email" json:"email"`
	Password     []byte    `db:"password" json:"-"`
	Status       int       `db:"status" json:"status"`
	RefreshToken string    `db:"refresh_token" json:"-"`
	Avatar       string    `db:"avatar" json:"avatar,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserProfile is the listing projection: no password digest, no refresh token.
// AvatarURL is filled by the asset enricher when the row carries an avatar key.
type UserProfile struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Status    int       `json:"status"`
	Avatar    string    `json:"avatar,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) Profile() UserProfile {
	return UserProfile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Status:    u.Status,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
