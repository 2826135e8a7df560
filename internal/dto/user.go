package dto

// RegisterRequest is the multipart form of a registration. The avatar and cover image
// files travel as separate form parts.
type RegisterRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	FullName string `form:"fullName" json:"fullName"`
}

// LoginRequest identifies the user by username or email.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshTokenRequest carries a refresh token when no cookie is present.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ChangePasswordRequest is the payload of a password change.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// UpdateUserRequest carries the profile fields a user may change.
type UpdateUserRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}
