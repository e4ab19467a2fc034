package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"roomtour-backend/internal/domains/upload"
	"roomtour-backend/internal/shared/response"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidUsername = errors.New("invalid username")
)

var userErrorMap = map[error]struct {
	Status  int
	Message string
}{
	ErrUserNotFound:    {http.StatusNotFound, "Пользователь не найден"},
	ErrInvalidUsername: {http.StatusBadRequest, "Некорректное имя пользователя"},
}

// HandleUserError writes the response for err and reports whether it did.
func HandleUserError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	for target, cfg := range userErrorMap {
		if errors.Is(err, target) {
			if cfg.Status == http.StatusNotFound {
				response.NotFound(c, cfg.Message)
			} else {
				response.Error(c, cfg.Status, cfg.Message)
			}
			return true
		}
	}

	if upload.IsUploadError(err) {
		return upload.HandleUploadError(c, err)
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg("[UserHandler] unexpected error")
	response.InternalServerError(c)
	return true
}
