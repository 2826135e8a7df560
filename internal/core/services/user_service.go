package services

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/user_accounts_service/internal/apperrors"
	"github.com/SscSPs/user_accounts_service/internal/core/domain"
	portsrepo "github.com/SscSPs/user_accounts_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/user_accounts_service/internal/core/ports/services"
)

// ErrMediaStoreDisabled is returned by image updates when no media store is configured.
var ErrMediaStoreDisabled = apperrors.NewAppError(http.StatusServiceUnavailable, "Image uploads are not configured", nil)

type userService struct {
	BaseService
	userRepo  portsrepo.UserRepositoryFacade
	validator portssvc.Validator
	media     portssvc.MediaStore
}

// NewUserService creates the profile service. media may be nil.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, validator portssvc.Validator, media portssvc.MediaStore) portssvc.UserSvcFacade {
	return &userService{
		userRepo:  userRepo,
		validator: validator,
		media:     media,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get user by ID", slog.String("user_id", userID))
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateUserFields(ctx context.Context, userID string, in portssvc.UpdateUserInput) (*domain.User, error) {
	in.Email = domain.NormalizeEmail(in.Email)
	if in.FullName == "" && in.Email == "" {
		return nil, apperrors.Invalid("fullName", "At least one of fullName or email must be provided")
	}
	if err := s.validator.Validate(ctx, in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, in.FullName, in.Email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to update user details", slog.String("user_id", userID))
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateAvatar(ctx context.Context, userID string, upload *domain.MediaUpload) (*domain.User, error) {
	return s.replaceMedia(ctx, userID, domain.MediaAvatar, upload)
}

func (s *userService) UpdateCoverImage(ctx context.Context, userID string, upload *domain.MediaUpload) (*domain.User, error) {
	return s.replaceMedia(ctx, userID, domain.MediaCoverImage, upload)
}

// replaceMedia uploads the new object first, swaps the stored reference and then
// deletes the object it replaced.
func (s *userService) replaceMedia(ctx context.Context, userID string, kind domain.MediaKind, upload *domain.MediaUpload) (*domain.User, error) {
	if s.media == nil {
		return nil, ErrMediaStoreDisabled
	}
	if upload == nil {
		return nil, apperrors.Invalid(string(kind), string(kind)+" file is missing")
	}

	url, err := s.media.Upload(ctx, kind, upload)
	if err != nil {
		s.LogError(ctx, err, "Failed to upload media", slog.String("kind", string(kind)))
		return nil, err
	}

	previous, err := s.userRepo.SwapMediaURL(ctx, userID, kind, url)
	if err != nil {
		s.deleteMedia(ctx, url)
		return nil, err
	}
	if previous != "" {
		s.deleteMedia(ctx, previous)
	}

	return s.userRepo.FindUserByID(ctx, userID)
}

func (s *userService) deleteMedia(ctx context.Context, url string) {
	if err := s.media.Delete(ctx, url); err != nil {
		s.LogWarn(ctx, "Failed to delete media object", slog.String("url", url), slog.String("error", err.Error()))
	}
}
