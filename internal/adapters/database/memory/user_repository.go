package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SscSPs/user_accounts_service/internal/apperrors"
	"github.com/SscSPs/user_accounts_service/internal/core/domain"
	portsrepo "github.com/SscSPs/user_accounts_service/internal/core/ports/repositories"
)

// UserRepository is an in-process credential store for local development and tests.
// A single mutex makes every method one atomic read-modify-write.
type UserRepository struct {
	mu         sync.Mutex
	users      map[string]*domain.User
	byUsername map[string]string
	byEmail    map[string]string
}

// NewUserRepository constructs an empty in-memory store.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:      make(map[string]*domain.User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

var _ portsrepo.UserRepositoryFacade = (*UserRepository)(nil)

func (r *UserRepository) SaveUser(ctx context.Context, user domain.User) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.UserID]; ok {
		return fmt.Errorf("user %s: %w", user.UserID, apperrors.ErrDuplicate)
	}
	if _, ok := r.byUsername[user.Username]; ok {
		return fmt.Errorf("username: %w", apperrors.ErrDuplicate)
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return fmt.Errorf("email: %w", apperrors.ErrDuplicate)
	}

	stored := clone(&user)
	r.users[user.UserID] = stored
	r.byUsername[user.Username] = user.UserID
	r.byEmail[user.Email] = user.UserID
	return nil
}

func (r *UserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.lookup(username, email); ok {
		return clone(r.users[id]), nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.lookup(username, email)
	return ok, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, userID, fullName, email string) (*domain.User, error) {
	return r.mutate(ctx, userID, func(u *domain.User) error {
		if email != "" && email != u.Email {
			if owner, taken := r.byEmail[email]; taken && owner != userID {
				return fmt.Errorf("email: %w", apperrors.ErrDuplicate)
			}
			delete(r.byEmail, u.Email)
			r.byEmail[email] = userID
			u.Email = email
		}
		if fullName != "" {
			u.FullName = fullName
		}
		return nil
	})
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID, passwordHash string, clearRefreshToken bool) error {
	_, err := r.mutate(ctx, userID, func(u *domain.User) error {
		u.PasswordHash = passwordHash
		if clearRefreshToken {
			u.RefreshTokenHash = nil
		}
		return nil
	})
	return err
}

func (r *UserRepository) SwapMediaURL(ctx context.Context, userID string, kind domain.MediaKind, url string) (string, error) {
	var previous string
	_, err := r.mutate(ctx, userID, func(u *domain.User) error {
		switch kind {
		case domain.MediaAvatar:
			previous, u.AvatarURL = u.AvatarURL, url
		case domain.MediaCoverImage:
			previous, u.CoverImageURL = u.CoverImageURL, url
		default:
			return apperrors.Invalid("kind", "unknown media kind "+string(kind))
		}
		return nil
	})
	return previous, err
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, userID, tokenHash string) error {
	_, err := r.mutate(ctx, userID, func(u *domain.User) error {
		u.RefreshTokenHash = &tokenHash
		return nil
	})
	return err
}

func (r *UserRepository) SwapRefreshToken(ctx context.Context, userID, expectedHash, nextHash string) error {
	_, err := r.mutate(ctx, userID, func(u *domain.User) error {
		if u.RefreshTokenHash == nil || *u.RefreshTokenHash != expectedHash {
			return apperrors.ErrRefreshTokenMismatch
		}
		u.RefreshTokenHash = &nextHash
		return nil
	})
	return err
}

func (r *UserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	_, err := r.mutate(ctx, userID, func(u *domain.User) error {
		u.RefreshTokenHash = nil
		return nil
	})
	return err
}

// mutate applies fn to the stored user under the lock. fn's changes are discarded if it fails.
func (r *UserRepository) mutate(ctx context.Context, userID string, fn func(u *domain.User) error) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	working := clone(stored)
	if err := fn(working); err != nil {
		return nil, err
	}
	working.UpdatedAt = time.Now().UTC()
	r.users[userID] = working
	return clone(working), nil
}

func (r *UserRepository) lookup(username, email string) (string, bool) {
	if username != "" {
		if id, ok := r.byUsername[username]; ok {
			return id, true
		}
	}
	if email != "" {
		if id, ok := r.byEmail[email]; ok {
			return id, true
		}
	}
	return "", false
}

func clone(u *domain.User) *domain.User {
	c := *u
	if u.RefreshTokenHash != nil {
		token := *u.RefreshTokenHash
		c.RefreshTokenHash = &token
	}
	return &c
}
