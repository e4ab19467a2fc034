package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roomtour-backend/internal/domains/upload"
	"roomtour-backend/internal/shared/response"
)

// FileField is the multipart field POST /api/upload reads.
const FileField = "file"

type Handler struct {
	service   upload.Service
	validator *upload.Validator
}

func NewHandler(service upload.Service, validator *upload.Validator) *Handler {
	return &Handler{
		service:   service,
		validator: validator,
	}
}

// Upload - POST /api/upload
func (h *Handler) Upload(c *gin.Context) {
	// 1. Read the single part
	file, err := upload.SingleFile(c, FileField, h.validator.MaxSize())
	if upload.HandleUploadError(c, err) {
		return
	}

	// 2. Validate and store
	result, err := h.service.Store(c.Request.Context(), h.validator, "", file)
	if upload.HandleUploadError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, response.UploadBody{
		Message:  upload.MsgUploaded,
		Filename: result.Filename,
		Path:     result.URL,
	})
}
