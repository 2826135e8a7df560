package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/user_accounts_service/internal/apperrors"
	"github.com/SscSPs/user_accounts_service/internal/core/domain"
	portssvc "github.com/SscSPs/user_accounts_service/internal/core/ports/services"
	"github.com/SscSPs/user_accounts_service/internal/platform/config"
	"github.com/SscSPs/user_accounts_service/internal/utils"
	"github.com/golang-jwt/jwt/v5"
)

// tokenService implements the TokenSvcFacade for handling access and refresh tokens.
// Access and refresh tokens are signed with different secrets.
type tokenService struct {
	accessSecret  string
	accessTTL     time.Duration
	refreshSecret string
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// TokenServiceOption is a functional option for configuring the token service
type TokenServiceOption func(*tokenService)

// WithClock overrides the time source used for issuing tokens.
func WithClock(now func() time.Time) TokenServiceOption {
	return func(s *tokenService) {
		s.now = now
	}
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config, options ...TokenServiceOption) portssvc.TokenSvcFacade {
	svc := &tokenService{
		accessSecret:  cfg.AccessTokenSecret,
		accessTTL:     cfg.AccessTokenExpiryDuration,
		refreshSecret: cfg.RefreshTokenSecret,
		refreshTTL:    cfg.RefreshTokenExpiryDuration,
		issuer:        cfg.JWTIssuer,
		now:           time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.TokenSvcFacade = (*tokenService)(nil)

// IssueAccessToken creates a new JWT access token for the given user.
func (s *tokenService) IssueAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	claims, expiresAt, err := s.baseClaims(user.UserID, domain.TokenKindAccess, s.accessTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	claims.Username = user.Username
	claims.Email = user.Email

	token, err := utils.GenerateJWT(claims, s.accessSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, expiresAt, nil
}

// IssueRefreshToken creates a new JWT refresh token for the given user.
func (s *tokenService) IssueRefreshToken(ctx context.Context, userID string) (string, time.Time, error) {
	claims, expiresAt, err := s.baseClaims(userID, domain.TokenKindRefresh, s.refreshTTL)
	if err != nil {
		return "", time.Time{}, err
	}

	token, err := utils.GenerateJWT(claims, s.refreshSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return token, expiresAt, nil
}

// IssuePair issues an access token and a refresh token together.
func (s *tokenService) IssuePair(ctx context.Context, user *domain.User) (domain.TokenPair, error) {
	access, accessExp, err := s.IssueAccessToken(ctx, user)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, refreshExp, err := s.IssueRefreshToken(ctx, user.UserID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		AccessToken:           access,
		AccessTokenExpiresAt:  accessExp,
		RefreshToken:          refresh,
		RefreshTokenExpiresAt: refreshExp,
	}, nil
}

// Verify checks a token of the given kind and returns its claims.
func (s *tokenService) Verify(ctx context.Context, token string, kind domain.TokenKind) (*domain.TokenClaims, error) {
	if token == "" {
		return nil, apperrors.ErrTokenMalformed
	}

	secret := s.accessSecret
	if kind == domain.TokenKindRefresh {
		secret = s.refreshSecret
	}

	claims, err := utils.ParseAndValidateJWT(token, secret, s.issuer)
	if err != nil {
		return nil, classifyJWTError(err)
	}

	if claims.TokenType != string(kind) || claims.Subject == "" || claims.ID == "" {
		return nil, apperrors.ErrTokenMalformed
	}

	out := &domain.TokenClaims{
		UserID:   claims.Subject,
		Kind:     kind,
		TokenID:  claims.ID,
		Username: claims.Username,
		Email:    claims.Email,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

func (s *tokenService) baseClaims(userID string, kind domain.TokenKind, ttl time.Duration) (utils.Claims, time.Time, error) {
	// The token ID makes every issued token unique, even two minted for the same user in the same second.
	jti, err := utils.GenerateSecureRandomString(16)
	if err != nil {
		return utils.Claims{}, time.Time{}, fmt.Errorf("failed to generate token id: %w", err)
	}

	now := s.now()
	expiresAt := now.Add(ttl)
	return utils.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
		TokenType: string(kind),
	}, expiresAt, nil
}

func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", apperrors.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", apperrors.ErrTokenSignatureInvalid, err)
	default:
		return fmt.Errorf("%w: %v", apperrors.ErrTokenMalformed, err)
	}
}
