package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/user_accounts_service/internal/apperrors"
	"github.com/SscSPs/user_accounts_service/internal/core/domain"
	portsrepo "github.com/SscSPs/user_accounts_service/internal/core/ports/repositories"
	"github.com/SscSPs/user_accounts_service/internal/models"
	"github.com/SscSPs/user_accounts_service/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const userColumns = `user_id, username, email, password_hash, full_name, avatar_url,
	cover_image_url, refresh_token_hash, created_at, updated_at`

// UserRepository is the PostgreSQL credential store.
// Every mutating method is a single statement so that concurrent callers never interleave.
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

var _ portsrepo.UserRepositoryFacade = (*UserRepository)(nil)

func (r *UserRepository) SaveUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	query := `
        INSERT INTO users (` + userColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
    `
	_, err := r.db.Exec(ctx, query,
		m.UserID,
		m.Username,
		m.Email,
		m.PasswordHash,
		m.FullName,
		m.AvatarURL,
		m.CoverImageURL,
		m.RefreshTokenHash,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return mapError("save user", err)
	}
	return nil
}

func (r *UserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1;`
	return r.queryUser(ctx, "find user by id", query, userID)
}

func (r *UserRepository) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	if username == "" && email == "" {
		return nil, apperrors.ErrNotFound
	}
	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
        ORDER BY (username = $1) DESC
        LIMIT 1;
    `
	return r.queryUser(ctx, "find user by username or email", query, username, email)
}

func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM users
            WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
        );
    `
	var exists bool
	if err := r.db.QueryRow(ctx, query, username, email).Scan(&exists); err != nil {
		return false, mapError("check user existence", err)
	}
	return exists, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, userID, fullName, email string) (*domain.User, error) {
	query := `
        UPDATE users
        SET full_name = COALESCE(NULLIF($2, ''), full_name),
            email = COALESCE(NULLIF($3, ''), email),
            updated_at = NOW()
        WHERE user_id = $1
        RETURNING ` + userColumns + `;
    `
	return r.queryUser(ctx, "update profile", query, userID, fullName, email)
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID, passwordHash string, clearRefreshToken bool) error {
	query := `
        UPDATE users
        SET password_hash = $2,
            refresh_token_hash = CASE WHEN $3::boolean THEN NULL ELSE refresh_token_hash END,
            updated_at = NOW()
        WHERE user_id = $1;
    `
	return r.execOne(ctx, "update password hash", query, userID, passwordHash, clearRefreshToken)
}

func (r *UserRepository) SwapMediaURL(ctx context.Context, userID string, kind domain.MediaKind, url string) (string, error) {
	var column string
	switch kind {
	case domain.MediaAvatar:
		column = "avatar_url"
	case domain.MediaCoverImage:
		column = "cover_image_url"
	default:
		return "", apperrors.Invalid("kind", "unknown media kind "+string(kind))
	}

	// The subquery locks the row so the returned previous value is the one actually replaced.
	query := fmt.Sprintf(`
        UPDATE users u
        SET %[1]s = $2, updated_at = NOW()
        FROM (SELECT user_id, %[1]s AS previous FROM users WHERE user_id = $1 FOR UPDATE) old
        WHERE u.user_id = old.user_id
        RETURNING old.previous;
    `, column)

	var previous *string
	if err := r.db.QueryRow(ctx, query, userID, url).Scan(&previous); err != nil {
		return "", mapError("swap media url", err)
	}
	if previous == nil {
		return "", nil
	}
	return *previous, nil
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, userID, tokenHash string) error {
	query := `UPDATE users SET refresh_token_hash = $2, updated_at = NOW() WHERE user_id = $1;`
	return r.execOne(ctx, "set refresh token", query, userID, tokenHash)
}

func (r *UserRepository) SwapRefreshToken(ctx context.Context, userID, expectedHash, nextHash string) error {
	query := `
        UPDATE users
        SET refresh_token_hash = $3, updated_at = NOW()
        WHERE user_id = $1 AND refresh_token_hash = $2;
    `
	cmdTag, err := r.db.Exec(ctx, query, userID, expectedHash, nextHash)
	if err != nil {
		return mapError("swap refresh token", err)
	}
	if cmdTag.RowsAffected() == 1 {
		return nil
	}

	// Nothing swapped: either someone rotated first or the user is gone.
	if _, err := r.FindUserByID(ctx, userID); err != nil {
		return err
	}
	return apperrors.ErrRefreshTokenMismatch
}

func (r *UserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	query := `UPDATE users SET refresh_token_hash = NULL, updated_at = NOW() WHERE user_id = $1;`
	return r.execOne(ctx, "clear refresh token", query, userID)
}

func (r *UserRepository) queryUser(ctx context.Context, op, query string, args ...any) (*domain.User, error) {
	var m models.User
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&m.UserID,
		&m.Username,
		&m.Email,
		&m.PasswordHash,
		&m.FullName,
		&m.AvatarURL,
		&m.CoverImageURL,
		&m.RefreshTokenHash,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(op, err)
	}
	user := mapping.ToDomainUser(m)
	return &user, nil
}

func (r *UserRepository) execOne(ctx context.Context, op, query string, args ...any) error {
	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapError(op, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func mapError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, apperrors.ErrDuplicate)
	}
	return fmt.Errorf("%w: failed to %s: %w", apperrors.ErrStoreUnavailable, op, err)
}
