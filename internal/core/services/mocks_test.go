package services_test

import (
	"context"
	"io"

	"github.com/SscSPs/user_accounts_service/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// --- Mock MediaStore ---
type MockMediaStore struct {
	mock.Mock
}

func (m *MockMediaStore) Upload(ctx context.Context, kind domain.MediaKind, upload *domain.MediaUpload) (string, error) {
	if upload != nil && upload.Body != nil {
		_, _ = io.Copy(io.Discard, upload.Body)
	}
	args := m.Called(ctx, kind, upload)
	return args.String(0), args.Error(1)
}

func (m *MockMediaStore) Delete(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	args := m.Called(ctx, username, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, userID, fullName, email string) (*domain.User, error) {
	args := m.Called(ctx, userID, fullName, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, userID, passwordHash string, clearRefreshToken bool) error {
	args := m.Called(ctx, userID, passwordHash, clearRefreshToken)
	return args.Error(0)
}

func (m *MockUserRepository) SwapMediaURL(ctx context.Context, userID string, kind domain.MediaKind, url string) (string, error) {
	args := m.Called(ctx, userID, kind, url)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) SetRefreshToken(ctx context.Context, userID, tokenHash string) error {
	args := m.Called(ctx, userID, tokenHash)
	return args.Error(0)
}

func (m *MockUserRepository) SwapRefreshToken(ctx context.Context, userID, expectedHash, nextHash string) error {
	args := m.Called(ctx, userID, expectedHash, nextHash)
	return args.Error(0)
}

func (m *MockUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// countingRecorder collects session events.
type countingRecorder struct {
	mock.Mock
}

func (r *countingRecorder) RecordSessionEvent(event string) {
	r.Called(event)
}
