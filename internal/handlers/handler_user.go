package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/user_accounts_service/internal/core/domain"
	portssvc "github.com/SscSPs/user_accounts_service/internal/core/ports/services"
	"github.com/SscSPs/user_accounts_service/internal/dto"
	"github.com/SscSPs/user_accounts_service/internal/middleware"
	"github.com/gin-gonic/gin"
)

// userHandler handles HTTP requests related to the authenticated user's profile.
type userHandler struct {
	userService    portssvc.UserSvcFacade
	maxUploadBytes int64
}

func newUserHandler(us portssvc.UserSvcFacade, maxUploadBytes int64) *userHandler {
	return &userHandler{
		userService:    us,
		maxUploadBytes: maxUploadBytes,
	}
}

// getUser godoc
// @Summary Get the current user
// @Tags users
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/get-user [get]
func (h *userHandler) getUser(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		abort(c, http.StatusUnauthorized, msgUnauthorized, nil)
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(http.StatusOK, gin.H{"user": dto.ToUserResponse(user.Public())}, "current user returned successfully"))
}

// updateUserDetails godoc
// @Summary Update full name and/or email
// @Tags users
// @Accept json
// @Produce json
// @Param body body dto.UpdateUserRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/update-user-details [post]
func (h *userHandler) updateUserDetails(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		abort(c, http.StatusUnauthorized, msgUnauthorized, nil)
		return
	}

	var req dto.UpdateUserRequest
	if !bindJSON(c, &req, false) {
		return
	}

	user, err := h.userService.UpdateUserFields(c.Request.Context(), userID, portssvc.UpdateUserInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		writeError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(http.StatusOK, dto.ToUserResponse(user.Public()), "User updated successfully"))
}

// updateAvatar godoc
// @Summary Replace the avatar
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/update-avatar [post]
func (h *userHandler) updateAvatar(c *gin.Context) {
	h.replaceMedia(c, domain.MediaAvatar, "new Avatar file required", "avatar changed successfully")
}

// updateCoverImage godoc
// @Summary Replace the cover image
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param coverImage formData file true "Cover image"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/update-cover-image [post]
func (h *userHandler) updateCoverImage(c *gin.Context) {
	h.replaceMedia(c, domain.MediaCoverImage, "new Cover Image file required", "Cover Image changed successfully")
}

func (h *userHandler) replaceMedia(c *gin.Context, kind domain.MediaKind, missingMsg, okMsg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		abort(c, http.StatusUnauthorized, msgUnauthorized, nil)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	upload, closeUpload, err := formFile(c, string(kind))
	defer closeUpload()
	if err != nil {
		abortBodyError(c, err)
		return
	}
	if upload == nil {
		abort(c, http.StatusBadRequest, missingMsg, nil)
		return
	}

	var user *domain.User
	if kind == domain.MediaAvatar {
		user, err = h.userService.UpdateAvatar(c.Request.Context(), userID, upload)
	} else {
		user, err = h.userService.UpdateCoverImage(c.Request.Context(), userID, upload)
	}
	if err != nil {
		writeError(c, err, "")
		return
	}

	logger.Info("Media replaced", slog.String("kind", string(kind)))
	c.JSON(http.StatusOK, dto.NewAPIResponse(http.StatusOK, dto.ToUserResponse(user.Public()), okMsg))
}
