package domain

import (
	"strings"
	"time"
)

// User is the identity and credential record of an account.
type User struct {
	UserID           string  `json:"userID"`
	Username         string  `json:"username"`
	Email            string  `json:"email"`
	FullName         string  `json:"fullName"`
	AvatarURL        string  `json:"avatar"`
	CoverImageURL    string  `json:"coverImage"`
	PasswordHash     string  `json:"-"`
	RefreshTokenHash *string `json:"-"` // digest of the current refresh token; nil means no active session
	AuditFields
}

// PublicUser is the view of a User that may leave the service.
type PublicUser struct {
	UserID        string    `json:"userID"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Public strips the password hash and refresh token.
func (u *User) Public() PublicUser {
	return PublicUser{
		UserID:        u.UserID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// HasSession reports whether the user currently holds a refresh token.
func (u *User) HasSession() bool {
	return u.RefreshTokenHash != nil && *u.RefreshTokenHash != ""
}

// NormalizeUsername trims and lower-cases a username.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
