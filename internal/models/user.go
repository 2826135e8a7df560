package models

import (
	"time"
)

// User is the row layout of the users table.
type User struct {
	UserID           string  `db:"user_id"`
	Username         string  `db:"username"`
	Email            string  `db:"email"`
	PasswordHash     string  `db:"password_hash"`
	FullName         string  `db:"full_name"`
	AvatarURL        *string `db:"avatar_url"`
	CoverImageURL    *string `db:"cover_image_url"`
	RefreshTokenHash *string `db:"refresh_token_hash"` // SHA256 of the current refresh token
	AuditFields
}

// AuditFields are the timestamp columns shared by tables.
type AuditFields struct {
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
