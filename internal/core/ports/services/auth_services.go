package services

import (
	"context"
	"time"

	"github.com/SscSPs/user_accounts_service/internal/core/domain"
)

// PasswordHasherSvc hashes and verifies passwords.
type PasswordHasherSvc interface {
	// Hash returns a salted one-way hash of plaintext.
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches hash. A mismatch is (false, nil);
	// an unreadable hash is apperrors.ErrCorruptCredential.
	Verify(plaintext, hash string) (bool, error)
}

// TokenSvcFacade mints and verifies signed access and refresh tokens.
type TokenSvcFacade interface {
	IssueAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
	IssueRefreshToken(ctx context.Context, userID string) (string, time.Time, error)
	IssuePair(ctx context.Context, user *domain.User) (domain.TokenPair, error)
	// Verify checks signature, expiry and kind. Failures are apperrors.ErrTokenExpired,
	// ErrTokenMalformed or ErrTokenSignatureInvalid.
	Verify(ctx context.Context, token string, kind domain.TokenKind) (*domain.TokenClaims, error)
}

// RegisterInput is the payload of a registration.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=20,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72,strongpassword"`
	FullName string `json:"fullName" validate:"required,max=100,fullname"`
}

// LoginInput identifies the user by username or email.
type LoginInput struct {
	Username string `json:"username" validate:"required_without=Email,omitempty,min=3,max=20,username"`
	Email    string `json:"email" validate:"required_without=Username,omitempty,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordInput is the payload of a password change.
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72,strongpassword"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User   domain.PublicUser
	Tokens domain.TokenPair
}

// SessionSvcFacade orchestrates registration, login, logout, refresh rotation
// and password changes.
type SessionSvcFacade interface {
	Register(ctx context.Context, in RegisterInput, avatar, cover *domain.MediaUpload) (*domain.User, error)
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error)
	Logout(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error
}

// Validator checks a payload against the rules declared on its type.
// Failures are *apperrors.ValidationError.
type Validator interface {
	Validate(ctx context.Context, payload any) error
}

// SessionEventRecorder counts session lifecycle events such as logins and detected refresh reuse.
type SessionEventRecorder interface {
	RecordSessionEvent(event string)
}

// Session lifecycle events reported to a SessionEventRecorder.
const (
	EventRegistered           = "registered"
	EventLoginSucceeded       = "login_succeeded"
	EventLoginFailed          = "login_failed"
	EventRefreshed            = "refreshed"
	EventRefreshReuseDetected = "refresh_reuse_detected"
	EventLoggedOut            = "logged_out"
	EventPasswordChanged      = "password_changed"
)
