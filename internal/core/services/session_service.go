package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/user_accounts_service/internal/apperrors"
	"github.com/SscSPs/user_accounts_service/internal/core/domain"
	portsrepo "github.com/SscSPs/user_accounts_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/user_accounts_service/internal/core/ports/services"
	"github.com/SscSPs/user_accounts_service/internal/utils"
	"github.com/google/uuid"
)

// sessionService is the only component that touches both the credential store and the
// token service. It keeps no state between calls; every operation re-reads the store.
type sessionService struct {
	BaseService
	userRepo               portsrepo.UserRepositoryFacade
	hasher                 portssvc.PasswordHasherSvc
	tokens                 portssvc.TokenSvcFacade
	validator              portssvc.Validator
	media                  portssvc.MediaStore
	events                 portssvc.SessionEventRecorder
	revokeOnPasswordChange bool
	now                    func() time.Time
}

// SessionServiceOption is a functional option for configuring the session service
type SessionServiceOption func(*sessionService)

// WithMediaStore enables avatar and cover image uploads during registration.
func WithMediaStore(media portssvc.MediaStore) SessionServiceOption {
	return func(s *sessionService) {
		s.media = media
	}
}

// WithSessionEvents reports lifecycle events to rec.
func WithSessionEvents(rec portssvc.SessionEventRecorder) SessionServiceOption {
	return func(s *sessionService) {
		s.events = rec
	}
}

// WithRevokeOnPasswordChange makes ChangePassword clear the stored refresh token.
func WithRevokeOnPasswordChange(revoke bool) SessionServiceOption {
	return func(s *sessionService) {
		s.revokeOnPasswordChange = revoke
	}
}

// NewSessionService creates a new session service.
func NewSessionService(
	userRepo portsrepo.UserRepositoryFacade,
	hasher portssvc.PasswordHasherSvc,
	tokens portssvc.TokenSvcFacade,
	validator portssvc.Validator,
	options ...SessionServiceOption,
) portssvc.SessionSvcFacade {
	svc := &sessionService{
		userRepo:  userRepo,
		hasher:    hasher,
		tokens:    tokens,
		validator: validator,
		now:       time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.SessionSvcFacade = (*sessionService)(nil)

// Register creates a new account and returns it without credentials.
func (s *sessionService) Register(ctx context.Context, in portssvc.RegisterInput, avatar, cover *domain.MediaUpload) (*domain.User, error) {
	in.Username = domain.NormalizeUsername(in.Username)
	in.Email = domain.NormalizeEmail(in.Email)
	if err := s.validator.Validate(ctx, in); err != nil {
		return nil, err
	}
	if s.media != nil && avatar == nil {
		return nil, apperrors.Invalid("avatar", "Avatar file is required")
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		s.LogError(ctx, err, "Failed to check for existing user")
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("user with email or username already exists: %w", apperrors.ErrDuplicate)
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: passwordHash,
		AuditFields:  domain.AuditFields{CreatedAt: now, UpdatedAt: now},
	}

	var uploaded []string
	if s.media != nil {
		if user.AvatarURL, err = s.media.Upload(ctx, domain.MediaAvatar, avatar); err != nil {
			s.LogError(ctx, err, "Failed to upload avatar")
			return nil, err
		}
		uploaded = append(uploaded, user.AvatarURL)

		if cover != nil {
			if user.CoverImageURL, err = s.media.Upload(ctx, domain.MediaCoverImage, cover); err != nil {
				s.LogError(ctx, err, "Failed to upload cover image")
				s.discardMedia(ctx, uploaded)
				return nil, err
			}
			uploaded = append(uploaded, user.CoverImageURL)
		}
	}

	// A concurrent registration can still win the unique index; SaveUser reports ErrDuplicate.
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		s.discardMedia(ctx, uploaded)
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save user")
		}
		return nil, err
	}

	s.record(portssvc.EventRegistered)
	s.LogInfo(ctx, "User registered", slog.String("user_id", user.UserID))

	user.PasswordHash = ""
	user.RefreshTokenHash = nil
	return &user, nil
}

// Login verifies credentials and starts a session, superseding any earlier one.
func (s *sessionService) Login(ctx context.Context, in portssvc.LoginInput) (*portssvc.LoginResult, error) {
	in.Username = domain.NormalizeUsername(in.Username)
	in.Email = domain.NormalizeEmail(in.Email)
	if err := s.validator.Validate(ctx, in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindUserByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.record(portssvc.EventLoginFailed)
			return nil, apperrors.ErrInvalidCredentials
		}
		s.LogError(ctx, err, "Failed to look up user for login")
		return nil, err
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		s.LogError(ctx, err, "Stored password hash is unreadable", slog.String("user_id", user.UserID))
		return nil, err
	}
	if !ok {
		s.record(portssvc.EventLoginFailed)
		return nil, apperrors.ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(ctx, user)
	if err != nil {
		s.LogError(ctx, err, "Failed to issue tokens", slog.String("user_id", user.UserID))
		return nil, err
	}

	if err := s.userRepo.SetRefreshToken(ctx, user.UserID, utils.HashRefreshToken(pair.RefreshToken)); err != nil {
		s.LogError(ctx, err, "Failed to persist refresh token", slog.String("user_id", user.UserID))
		return nil, err
	}

	s.record(portssvc.EventLoginSucceeded)
	s.LogInfo(ctx, "User logged in", slog.String("user_id", user.UserID))
	return &portssvc.LoginResult{User: user.Public(), Tokens: pair}, nil
}

// Refresh rotates the presented refresh token. Of several concurrent calls presenting the
// same token at most one succeeds; the rest fail with ErrRefreshTokenMismatch.
func (s *sessionService) Refresh(ctx context.Context, presented string) (domain.TokenPair, error) {
	if presented == "" {
		return domain.TokenPair{}, fmt.Errorf("%w: refresh token missing", apperrors.ErrUnauthorized)
	}

	claims, err := s.tokens.Verify(ctx, presented, domain.TokenKindRefresh)
	if err != nil {
		s.LogDebug(ctx, "Refresh token rejected", slog.String("reason", err.Error()))
		return domain.TokenPair{}, err
	}

	user, err := s.userRepo.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load user for refresh", slog.String("user_id", claims.UserID))
		}
		return domain.TokenPair{}, err
	}

	presentedHash := utils.HashRefreshToken(presented)
	if user.RefreshTokenHash == nil || !utils.CompareRefreshTokenHash(presented, *user.RefreshTokenHash) {
		s.reuseDetected(ctx, user.UserID)
		return domain.TokenPair{}, apperrors.ErrRefreshTokenMismatch
	}

	pair, err := s.tokens.IssuePair(ctx, user)
	if err != nil {
		s.LogError(ctx, err, "Failed to issue tokens", slog.String("user_id", user.UserID))
		return domain.TokenPair{}, err
	}

	err = s.userRepo.SwapRefreshToken(ctx, user.UserID, presentedHash, utils.HashRefreshToken(pair.RefreshToken))
	if err != nil {
		if errors.Is(err, apperrors.ErrRefreshTokenMismatch) {
			s.reuseDetected(ctx, user.UserID)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to rotate refresh token", slog.String("user_id", user.UserID))
		}
		return domain.TokenPair{}, err
	}

	s.record(portssvc.EventRefreshed)
	return pair, nil
}

// Logout ends the user's session. Logging out without a session is not an error.
func (s *sessionService) Logout(ctx context.Context, userID string) error {
	if err := s.userRepo.ClearRefreshToken(ctx, userID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to clear refresh token", slog.String("user_id", userID))
		}
		return err
	}
	s.record(portssvc.EventLoggedOut)
	s.LogInfo(ctx, "User logged out", slog.String("user_id", userID))
	return nil
}

// ChangePassword replaces the password hash after verifying the old password.
func (s *sessionService) ChangePassword(ctx context.Context, userID string, in portssvc.ChangePasswordInput) error {
	if err := s.validator.Validate(ctx, in); err != nil {
		return err
	}
	if in.OldPassword == in.NewPassword {
		return apperrors.Invalid("newPassword", "Old password and new password cannot be same")
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(in.OldPassword, user.PasswordHash)
	if err != nil {
		s.LogError(ctx, err, "Stored password hash is unreadable", slog.String("user_id", userID))
		return err
	}
	if !ok {
		return apperrors.ErrInvalidCredentials
	}

	passwordHash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, userID, passwordHash, s.revokeOnPasswordChange); err != nil {
		s.LogError(ctx, err, "Failed to update password", slog.String("user_id", userID))
		return err
	}

	s.record(portssvc.EventPasswordChanged)
	s.LogInfo(ctx, "Password changed",
		slog.String("user_id", userID),
		slog.Bool("sessions_revoked", s.revokeOnPasswordChange))
	return nil
}

func (s *sessionService) reuseDetected(ctx context.Context, userID string) {
	s.record(portssvc.EventRefreshReuseDetected)
	s.LogWarn(ctx, "Refresh token is not the current one", slog.String("user_id", userID))
}

func (s *sessionService) discardMedia(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.media.Delete(ctx, url); err != nil {
			s.LogError(ctx, err, "Failed to delete uploaded media", slog.String("url", url))
		}
	}
}

func (s *sessionService) record(event string) {
	if s.events != nil {
		s.events.RecordSessionEvent(event)
	}
}
