package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Generic message for anything that is not the client's fault.
const MsgInternal = "Произошла внутренняя ошибка сервера"

// ErrorBody is the {"error": ...} shape used for 4xx validation and 5xx errors.
type ErrorBody struct {
	Error string `json:"error"`
}

// DetailBody is the {"detail": ...} shape used for 404 lookups.
type DetailBody struct {
	Detail string `json:"detail"`
}

// UploadBody is returned by POST /api/upload.
type UploadBody struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

func Error(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorBody{Error: message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusNotFound, DetailBody{Detail: message})
}

func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, MsgInternal)
}
