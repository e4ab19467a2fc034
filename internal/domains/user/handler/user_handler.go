package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roomtour-backend/internal/domains/upload"
	"roomtour-backend/internal/domains/user"
	"roomtour-backend/internal/shared/response"
)

// AvatarField is the multipart field of POST /api/users/:username/avatar.
const AvatarField = "avatar"

type UserHandler struct {
	service       user.Service
	avatarMaxSize int64
}

func NewUserHandler(service user.Service, avatarMaxSize int64) *UserHandler {
	return &UserHandler{
		service:       service,
		avatarMaxSize: avatarMaxSize,
	}
}

// GetProfile - GET /api/users/:username
func (h *UserHandler) GetProfile(c *gin.Context) {
	username := c.Param("username")

	profile, err := h.service.GetProfile(c.Request.Context(), username)
	if user.HandleUserError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, profile)
}

// UpdateProfile - PATCH /api/users/:username
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	username := c.Param("username")

	// 1. Bind
	var req user.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Некорректные данные запроса")
		return
	}

	// 2. Validate
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	// 3. Update
	profile, err := h.service.UpdateProfile(c.Request.Context(), username, req)
	if user.HandleUserError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, profile)
}

// UpdateAvatar - POST /api/users/:username/avatar
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	username := c.Param("username")

	file, err := upload.SingleFile(c, AvatarField, h.avatarMaxSize)
	if upload.HandleUploadError(c, err) {
		return
	}

	profile, err := h.service.UpdateAvatar(c.Request.Context(), username, file)
	if user.HandleUserError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, profile)
}

// ShareProfile - GET /api/users/:username/share
func (h *UserHandler) ShareProfile(c *gin.Context) {
	share, err := h.service.ShareProfile(c.Request.Context(), c.Param("username"))
	if user.HandleUserError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, share)
}
