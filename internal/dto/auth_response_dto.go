package dto

import "github.com/SscSPs/user_accounts_service/internal/core/domain"

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// RefreshTokenResponse represents the response for a successful token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ToRefreshTokenResponse converts a token pair.
func ToRefreshTokenResponse(pair domain.TokenPair) RefreshTokenResponse {
	return RefreshTokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}
}
