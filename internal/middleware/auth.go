package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/user_accounts_service/internal/apperrors"
	"github.com/SscSPs/user_accounts_service/internal/core/domain"
	"github.com/SscSPs/user_accounts_service/internal/dto"
	"github.com/gin-gonic/gin"
)

// Cookie names used to carry tokens to and from browsers.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// AccessTokenVerifier verifies access tokens.
type AccessTokenVerifier interface {
	Verify(ctx context.Context, token string, kind domain.TokenKind) (*domain.TokenClaims, error)
}

// AuthMiddleware creates a Gin middleware handler that validates access tokens taken from
// the Authorization header or, failing that, the access token cookie.
func AuthMiddleware(verifier AccessTokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		tokenString, ok := extractAccessToken(c)
		if !ok {
			logger.Warn("Access token missing or malformed header")
			abortUnauthorized(c, "Unauthorized request")
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), tokenString, domain.TokenKindAccess)
		if err != nil {
			logger.Warn("Invalid access token", slog.String("error", err.Error()))
			msg := "Invalid access token"
			if errors.Is(err, apperrors.ErrTokenExpired) {
				msg = "Access token has expired"
			}
			abortUnauthorized(c, msg)
			return
		}

		enrichedLogger := logger.With(slog.String("user_id", claims.UserID))
		ctx := WithLogger(WithUserID(c.Request.Context(), claims.UserID), enrichedLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func extractAccessToken(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(http.StatusUnauthorized, msg, nil))
}
