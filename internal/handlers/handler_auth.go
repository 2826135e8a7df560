package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/user_accounts_service/internal/apperrors"
	"github.com/SscSPs/user_accounts_service/internal/core/domain"
	portssvc "github.com/SscSPs/user_accounts_service/internal/core/ports/services"
	"github.com/SscSPs/user_accounts_service/internal/dto"
	"github.com/SscSPs/user_accounts_service/internal/middleware"
	"github.com/SscSPs/user_accounts_service/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// authHandler handles registration, login and the session token endpoints.
type authHandler struct {
	sessionService portssvc.SessionSvcFacade
	cookieSecure   bool
	maxUploadBytes int64
}

func newAuthHandler(ss portssvc.SessionSvcFacade, cfg *config.Config) *authHandler {
	return &authHandler{
		sessionService: ss,
		cookieSecure:   cfg.CookieSecure,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
}

// register godoc
// @Summary Register a new user
// @Description Creates an account. Avatar and cover image are sent as multipart files.
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param username formData string true "Username"
// @Param email formData string true "Email"
// @Param password formData string true "Password"
// @Param fullName formData string true "Full name"
// @Param avatar formData file false "Avatar image"
// @Param coverImage formData file false "Cover image"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /users/register [post]
func (h *authHandler) register(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		abortBodyError(c, err)
		return
	}

	avatar, closeAvatar, err := formFile(c, "avatar")
	defer closeAvatar()
	if err != nil {
		abortBodyError(c, err)
		return
	}
	cover, closeCover, err := formFile(c, "coverImage")
	defer closeCover()
	if err != nil {
		abortBodyError(c, err)
		return
	}

	user, err := h.sessionService.Register(c.Request.Context(), portssvc.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	}, avatar, cover)
	if err != nil {
		writeError(c, err, "")
		return
	}

	c.JSON(http.StatusCreated, dto.NewAPIResponse(http.StatusCreated, dto.ToUserResponse(user.Public()), "User registered Successfully"))
}

// login godoc
// @Summary User login
// @Description Authenticates by username or email and returns an access and a refresh token,
// @Description both in the body and as httpOnly cookies.
// @Tags users
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /users/login [post]
func (h *authHandler) login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req, false) {
		return
	}

	res, err := h.sessionService.Login(c.Request.Context(), portssvc.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err, msgInvalidCredentials)
		return
	}

	h.setTokenCookies(c, res.Tokens)
	c.JSON(http.StatusOK, dto.NewAPIResponse(http.StatusOK, dto.LoginResponse{
		User:         dto.ToUserResponse(res.User),
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}, "user logged in successfully"))
}

// logout godoc
// @Summary Log out
// @Description Revokes the current refresh token and clears the token cookies.
// @Tags users
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/logout [post]
func (h *authHandler) logout(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		abort(c, http.StatusUnauthorized, msgUnauthorized, nil)
		return
	}

	if err := h.sessionService.Logout(c.Request.Context(), userID); err != nil {
		writeError(c, err, "")
		return
	}

	h.clearTokenCookies(c)
	c.JSON(http.StatusOK, dto.NewAPIResponse(http.StatusOK, gin.H{}, "User logged out successfully"))
}

// refreshToken godoc
// @Summary Rotate tokens
// @Description Exchanges the current refresh token (cookie or body) for a new token pair.
// @Description A refresh token can be used only once.
// @Tags users
// @Accept json
// @Produce json
// @Param body body dto.RefreshTokenRequest false "Refresh token when no cookie is sent"
// @Success 200 {object} dto.APIResponse{data=dto.RefreshTokenResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/generateToken [post]
func (h *authHandler) refreshToken(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	presented, _ := c.Cookie(middleware.RefreshTokenCookie)
	if presented == "" {
		var req dto.RefreshTokenRequest
		if !bindJSON(c, &req, true) {
			return
		}
		presented = req.RefreshToken
	}
	if presented == "" {
		abort(c, http.StatusUnauthorized, "Unauthorized request - refresh token required", nil)
		return
	}

	pair, err := h.sessionService.Refresh(c.Request.Context(), presented)
	if err != nil {
		h.clearTokenCookies(c)
		// A token for a user that no longer exists is just an invalid token to the caller.
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Refresh token subject no longer exists")
			abort(c, http.StatusUnauthorized, msgInvalidRefresh, nil)
			return
		}
		writeError(c, err, msgInvalidRefresh)
		return
	}

	h.setTokenCookies(c, pair)
	logger.Debug("Tokens rotated", slog.Time("refresh_expires_at", pair.RefreshTokenExpiresAt))
	c.JSON(http.StatusOK, dto.NewAPIResponse(http.StatusOK, dto.ToRefreshTokenResponse(pair), "new tokens generated successfully"))
}

// changePassword godoc
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Param body body dto.ChangePasswordRequest true "Old and new password"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/change-password [post]
func (h *authHandler) changePassword(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		abort(c, http.StatusUnauthorized, msgUnauthorized, nil)
		return
	}

	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req, false) {
		return
	}

	err := h.sessionService.ChangePassword(c.Request.Context(), userID, portssvc.ChangePasswordInput{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		writeError(c, err, "Invalid password")
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(http.StatusOK, gin.H{}, "password changed successfully"))
}

func (h *authHandler) setTokenCookies(c *gin.Context, pair domain.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, pair.AccessToken, maxAge(pair.AccessTokenExpiresAt), "/", "", h.cookieSecure, true)
	c.SetCookie(middleware.RefreshTokenCookie, pair.RefreshToken, maxAge(pair.RefreshTokenExpiresAt), "/", "", h.cookieSecure, true)
}

func (h *authHandler) clearTokenCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", h.cookieSecure, true)
	c.SetCookie(middleware.RefreshTokenCookie, "", -1, "/", "", h.cookieSecure, true)
}

func maxAge(expiresAt time.Time) int {
	seconds := int(time.Until(expiresAt).Seconds())
	if seconds < 1 {
		return 1
	}
	return seconds
}

func abortBodyError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		abort(c, http.StatusRequestEntityTooLarge, "Request body is too large", nil)
		return
	}
	abort(c, http.StatusBadRequest, msgInvalidBody, nil)
}
