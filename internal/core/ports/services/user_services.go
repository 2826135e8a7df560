package services

import (
	"context"

	"github.com/SscSPs/user_accounts_service/internal/core/domain"
)

// UpdateUserInput carries the profile fields a user may change. At least one must be set.
type UpdateUserInput struct {
	FullName string `json:"fullName" validate:"omitempty,max=100,fullname"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
}

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// UpdateUserFields updates full name and/or email.
	UpdateUserFields(ctx context.Context, userID string, in UpdateUserInput) (*domain.User, error)

	// UpdateAvatar uploads a new avatar and deletes the previous one.
	UpdateAvatar(ctx context.Context, userID string, upload *domain.MediaUpload) (*domain.User, error)

	// UpdateCoverImage uploads a new cover image and deletes the previous one.
	UpdateCoverImage(ctx context.Context, userID string, upload *domain.MediaUpload) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
}

// MediaStore keeps user images in remote object storage.
type MediaStore interface {
	// Upload stores the file and returns its public URL.
	Upload(ctx context.Context, kind domain.MediaKind, upload *domain.MediaUpload) (string, error)
	// Delete removes the object behind a URL previously returned by Upload.
	Delete(ctx context.Context, url string) error
}
