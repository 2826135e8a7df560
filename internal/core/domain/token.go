package domain

import "time"

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenPair is issued together on login and refresh. It is never persisted;
// only the refresh token value is stored on the user.
type TokenPair struct {
	AccessToken           string    `json:"accessToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshToken          string    `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
}

// TokenClaims is what a verified token tells us.
type TokenClaims struct {
	UserID    string
	Kind      TokenKind
	TokenID   string
	Username  string
	Email     string
	ExpiresAt time.Time
}
