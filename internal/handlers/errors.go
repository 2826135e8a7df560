package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/user_accounts_service/internal/apperrors"
	"github.com/SscSPs/user_accounts_service/internal/dto"
	"github.com/SscSPs/user_accounts_service/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Fixed, non-leaking messages per error kind.
const (
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidRefresh     = "Invalid refresh token"
	msgUnauthorized       = "Unauthorized request"
	msgConflict           = "User with email or username already exists"
	msgNotFound           = "User not found"
	msgMediaFailed        = "Unable to store images"
	msgInternal           = "Something went wrong"
	msgInvalidBody        = "Invalid request body"
)

// writeError maps an error kind to a status code and a fixed message. unauthorizedMsg
// replaces the generic 401 message for token and credential failures.
func writeError(c *gin.Context, err error, unauthorizedMsg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var (
		validationErr *apperrors.ValidationError
		appErr        *apperrors.AppError
	)
	switch {
	case errors.As(err, &validationErr):
		msg := "Validation failed"
		if len(validationErr.Fields) > 0 {
			msg = validationErr.Fields[0].Message
		}
		abort(c, http.StatusBadRequest, msg, validationErr.Fields)
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		abort(c, http.StatusUnauthorized, msgInvalidCredentials, nil)
	case errors.Is(err, apperrors.ErrUnauthorized):
		if unauthorizedMsg == "" {
			unauthorizedMsg = msgUnauthorized
		}
		abort(c, http.StatusUnauthorized, unauthorizedMsg, nil)
	case errors.Is(err, apperrors.ErrDuplicate):
		abort(c, http.StatusConflict, msgConflict, nil)
	case errors.Is(err, apperrors.ErrNotFound):
		abort(c, http.StatusNotFound, msgNotFound, nil)
	case errors.As(err, &appErr):
		if appErr.Code >= http.StatusInternalServerError {
			logger.Error(appErr.Message, slog.String("error", err.Error()))
		}
		abort(c, appErr.Code, appErr.Message, nil)
	case errors.Is(err, apperrors.ErrMediaStoreUnavailable):
		logger.Error("Media store failure", slog.String("error", err.Error()))
		abort(c, http.StatusBadGateway, msgMediaFailed, nil)
	default:
		// ErrCorruptCredential, ErrStoreUnavailable and anything unclassified.
		logger.Error("Request failed", slog.String("error", err.Error()))
		abort(c, http.StatusInternalServerError, msgInternal, nil)
	}
}

func abort(c *gin.Context, status int, msg string, fields []apperrors.FieldError) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(status, msg, fields))
}
