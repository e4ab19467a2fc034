package upload

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"roomtour-backend/internal/shared/response"
)

var (
	ErrNoFile            = errors.New("no file uploaded")
	ErrTooManyFiles      = errors.New("too many files")
	ErrUnexpectedField   = errors.New("unexpected field")
	ErrFileTooLarge      = errors.New("file exceeds size limit")
	ErrExtensionNotAllow = errors.New("file extension not allowed")
	ErrUnsupportedType   = errors.New("unsupported declared content type")
	ErrTypeMismatch      = errors.New("detected content type not allowed")
	ErrDangerousContent  = errors.New("suspicious content in file header")
)

// FileError ties a validation failure to the offending file.
type FileError struct {
	File   string
	Detail string
	Err    error
}

func (e *FileError) Error() string {
	if e.Detail != "" {
		return e.File + ": " + e.Err.Error() + " (" + e.Detail + ")"
	}
	return e.File + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}

func fileError(name string, err error, detail string) error {
	return &FileError{File: name, Detail: detail, Err: err}
}

// Client-facing messages of POST /api/upload.
const (
	MsgUploaded         = "Файл успешно загружен"
	MsgNoFile           = "Файл не был загружен"
	MsgFileTooLarge     = "Размер файла превышает допустимый предел"
	MsgUnsupportedType  = "Неподдерживаемый тип файла"
	MsgTypeMismatch     = "Обнаружена подмена типа файла"
	MsgDangerousContent = "Обнаружен потенциально опасный контент"
)

var uploadErrorMap = map[error]struct {
	Status  int
	Message string
}{
	ErrNoFile:            {http.StatusBadRequest, MsgNoFile},
	ErrTooManyFiles:      {http.StatusBadRequest, "Too many files"},
	ErrUnexpectedField:   {http.StatusBadRequest, "Unexpected field"},
	ErrFileTooLarge:      {http.StatusBadRequest, MsgFileTooLarge},
	ErrExtensionNotAllow: {http.StatusBadRequest, MsgUnsupportedType},
	ErrUnsupportedType:   {http.StatusBadRequest, MsgUnsupportedType},
	ErrTypeMismatch:      {http.StatusBadRequest, MsgTypeMismatch},
	ErrDangerousContent:  {http.StatusBadRequest, MsgDangerousContent},
}

// IsUploadError reports whether err is one of the client-side upload errors.
func IsUploadError(err error) bool {
	for target := range uploadErrorMap {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// HandleUploadError writes the response for err and reports whether it did.
func HandleUploadError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	for target, cfg := range uploadErrorMap {
		if errors.Is(err, target) {
			response.Error(c, cfg.Status, cfg.Message)
			return true
		}
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg("[Upload] unexpected error")
	response.InternalServerError(c)
	return true
}
