package dto

import (
	"time"

	"github.com/SscSPs/user_accounts_service/internal/core/domain"
)

// UserResponse is the public view of a user. It never contains the password hash or refresh token.
type UserResponse struct {
	UserID     string    `json:"userID"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ToUserResponse converts a public user view.
func ToUserResponse(u domain.PublicUser) UserResponse {
	return UserResponse{
		UserID:     u.UserID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.AvatarURL,
		CoverImage: u.CoverImageURL,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
