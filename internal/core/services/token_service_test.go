package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/user_accounts_service/internal/apperrors"
	"github.com/SscSPs/user_accounts_service/internal/core/domain"
	"github.com/SscSPs/user_accounts_service/internal/core/services"
	"github.com/SscSPs/user_accounts_service/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		AccessTokenSecret:          "access-secret-for-tests-0123456789",
		AccessTokenExpiryDuration:  15 * time.Minute,
		RefreshTokenSecret:         "refresh-secret-for-tests-0123456789",
		RefreshTokenExpiryDuration: 7 * 24 * time.Hour,
		JWTIssuer:                  "user-accounts-test",
		BcryptCost:                 4,
	}
}

func testUser() *domain.User {
	return &domain.User{UserID: "6f1c8a2e-0000-4000-8000-000000000001", Username: "alice", Email: "alice@example.com"}
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	ctx := context.Background()
	svc := services.NewTokenService(testConfig())

	pair, err := svc.IssuePair(ctx, testUser())
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	access, err := svc.Verify(ctx, pair.AccessToken, domain.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, testUser().UserID, access.UserID)
	assert.Equal(t, "alice", access.Username)
	assert.Equal(t, "alice@example.com", access.Email)
	assert.Equal(t, domain.TokenKindAccess, access.Kind)

	refresh, err := svc.Verify(ctx, pair.RefreshToken, domain.TokenKindRefresh)
	require.NoError(t, err)
	assert.Equal(t, testUser().UserID, refresh.UserID)
	assert.Empty(t, refresh.Username)
}

func TestTokenService_TokensAreUnique(t *testing.T) {
	ctx := context.Background()
	svc := services.NewTokenService(testConfig())

	a, _, err := svc.IssueRefreshToken(ctx, "user-1")
	require.NoError(t, err)
	b, _, err := svc.IssueRefreshToken(ctx, "user-1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestTokenService_SecretsAreNotInterchangeable(t *testing.T) {
	ctx := context.Background()
	svc := services.NewTokenService(testConfig())

	pair, err := svc.IssuePair(ctx, testUser())
	require.NoError(t, err)

	_, err = svc.Verify(ctx, pair.AccessToken, domain.TokenKindRefresh)
	assert.ErrorIs(t, err, apperrors.ErrTokenSignatureInvalid)

	_, err = svc.Verify(ctx, pair.RefreshToken, domain.TokenKindAccess)
	assert.ErrorIs(t, err, apperrors.ErrTokenSignatureInvalid)
}

func TestTokenService_WrongKindWithSharedSecret(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.RefreshTokenSecret = cfg.AccessTokenSecret
	svc := services.NewTokenService(cfg)

	refresh, _, err := svc.IssueRefreshToken(ctx, "user-1")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, refresh, domain.TokenKindAccess)
	assert.ErrorIs(t, err, apperrors.ErrTokenMalformed)
}

func TestTokenService_Expired(t *testing.T) {
	ctx := context.Background()
	past := func() time.Time { return time.Now().Add(-time.Hour) }
	svc := services.NewTokenService(testConfig(), services.WithClock(past))

	access, _, err := svc.IssueAccessToken(ctx, testUser())
	require.NoError(t, err)

	_, err = svc.Verify(ctx, access, domain.TokenKindAccess)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTokenService_MalformedAndTampered(t *testing.T) {
	ctx := context.Background()
	svc := services.NewTokenService(testConfig())

	_, err := svc.Verify(ctx, "", domain.TokenKindAccess)
	assert.ErrorIs(t, err, apperrors.ErrTokenMalformed)

	_, err = svc.Verify(ctx, "not.a.jwt", domain.TokenKindAccess)
	assert.ErrorIs(t, err, apperrors.ErrTokenMalformed)

	access, _, err := svc.IssueAccessToken(ctx, testUser())
	require.NoError(t, err)
	parts := strings.Split(access, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = svc.Verify(ctx, tampered, domain.TokenKindAccess)
	assert.ErrorIs(t, err, apperrors.ErrTokenSignatureInvalid)
}

func TestTokenService_WrongIssuer(t *testing.T) {
	ctx := context.Background()
	other := testConfig()
	other.JWTIssuer = "someone-else"

	access, _, err := services.NewTokenService(other).IssueAccessToken(ctx, testUser())
	require.NoError(t, err)

	_, err = services.NewTokenService(testConfig()).Verify(ctx, access, domain.TokenKindAccess)
	assert.ErrorIs(t, err, apperrors.ErrTokenMalformed)
}
