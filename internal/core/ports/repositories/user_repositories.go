package repositories

import (
	"context"

	"github.com/SscSPs/user_accounts_service/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a user by ID. Returns apperrors.ErrNotFound if absent.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByUsernameOrEmail matches a non-empty username or a non-empty email.
	FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)

	// ExistsByUsernameOrEmail reports whether any user already owns the username or the email.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user. Unique violations return apperrors.ErrDuplicate.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateProfile sets full name and email. Empty values leave the column untouched.
	UpdateProfile(ctx context.Context, userID, fullName, email string) (*domain.User, error)

	// UpdatePasswordHash replaces the password hash, optionally clearing the refresh token
	// in the same write.
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string, clearRefreshToken bool) error

	// SwapMediaURL stores a new media reference and returns the one it replaced.
	SwapMediaURL(ctx context.Context, userID string, kind domain.MediaKind, url string) (previous string, err error)
}

// RefreshTokenStore holds the digest of the single current refresh token of a user.
// Every method is a single atomic read-modify-write against the store.
type RefreshTokenStore interface {
	// SetRefreshToken unconditionally replaces the stored token (last write wins).
	SetRefreshToken(ctx context.Context, userID, tokenHash string) error

	// SwapRefreshToken replaces expectedHash with nextHash only if expectedHash is still current.
	// Returns apperrors.ErrRefreshTokenMismatch when it is not, ErrNotFound when the user is gone.
	SwapRefreshToken(ctx context.Context, userID, expectedHash, nextHash string) error

	// ClearRefreshToken sets the stored token to null. Clearing twice is not an error.
	ClearRefreshToken(ctx context.Context, userID string) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
	RefreshTokenStore
}
