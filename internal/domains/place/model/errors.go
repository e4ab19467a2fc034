package model

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"roomtour-backend/internal/domains/upload"
	"roomtour-backend/internal/shared/response"
)

var (
	ErrPlaceNotFound   = errors.New("place not found")
	ErrImageNotFound   = errors.New("place image not found")
	ErrInvalidRating   = errors.New("рейтинг должен быть от 0 до 5")
	ErrSlugExhausted   = errors.New("could not allocate a unique slug")
	ErrSlugConflict    = errors.New("slug already exists")
	ErrNoImages        = errors.New("no images selected")
	ErrInvalidPlaceRef = errors.New("invalid place identifier")
)

// NotFoundMessage is the 404 detail for a missing place.
func NotFoundMessage(identifier string) string {
	return fmt.Sprintf("Место с идентификатором %s не существует", identifier)
}

// ImageTooLargeMessage and ImageFormatMessage describe a rejected place photo.
func ImageTooLargeMessage(filename string) string {
	return fmt.Sprintf("Файл %s превышает максимальный размер 10 МБ.", filename)
}

func ImageFormatMessage(ext string, allowed []string) string {
	return fmt.Sprintf("Формат файла %s не поддерживается. Разрешены только: %s", ext, strings.Join(allowed, ", "))
}

var placeErrorMap = map[error]struct {
	Status  int
	Message string
}{
	ErrInvalidRating:   {http.StatusBadRequest, ErrInvalidRating.Error()},
	ErrNoImages:        {http.StatusBadRequest, "Не выбраны изображения для загрузки."},
	ErrInvalidPlaceRef: {http.StatusBadRequest, "Некорректный идентификатор места"},
	ErrSlugConflict:    {http.StatusConflict, "Место с таким названием уже существует"},
}

// ValidationMessage returns the first field message of an ozzo error set, or
// err.Error() for anything else.
func ValidationMessage(err error) string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for field := range verrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return verrs[fields[0]].Error()
}

// HandlePlaceError writes the response for err and reports whether it did.
// identifier is echoed in the 404 detail.
func HandlePlaceError(c *gin.Context, identifier string, err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrPlaceNotFound) {
		response.NotFound(c, NotFoundMessage(identifier))
		return true
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.BadRequest(c, ValidationMessage(err))
		return true
	}

	for target, cfg := range placeErrorMap {
		if errors.Is(err, target) {
			response.Error(c, cfg.Status, cfg.Message)
			return true
		}
	}

	var fe *upload.FileError
	if errors.As(err, &fe) {
		switch {
		case errors.Is(fe.Err, upload.ErrFileTooLarge):
			response.BadRequest(c, ImageTooLargeMessage(fe.File))
			return true
		case errors.Is(fe.Err, upload.ErrExtensionNotAllow):
			response.BadRequest(c, ImageFormatMessage(strings.ToLower(fe.Detail), ImageExtensions))
			return true
		}
	}

	if errors.Is(err, upload.ErrNoFile) {
		response.Error(c, http.StatusBadRequest, placeErrorMap[ErrNoImages].Message)
		return true
	}
	if upload.IsUploadError(err) {
		return upload.HandleUploadError(c, err)
	}

	log.Error().Err(err).Str("place", identifier).Str("path", c.FullPath()).Msg("[PlaceHandler] unexpected error")
	response.InternalServerError(c)
	return true
}
