package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	formOverhead = 1 << 20
	formMemory   = 32 << 20
)

func parseForm(c *gin.Context, bodyLimit int64) (*multipart.Form, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, bodyLimit)

	if err := c.Request.ParseMultipartForm(formMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, ErrFileTooLarge
		}
		return nil, fmt.Errorf("%w: %v", ErrNoFile, err)
	}
	return c.Request.MultipartForm, nil
}

func readPart(h *multipart.FileHeader, maxSize int64) (File, error) {
	if maxSize > 0 && h.Size > maxSize {
		return File{}, fileError(h.Filename, ErrFileTooLarge, "")
	}

	f, err := h.Open()
	if err != nil {
		return File{}, fmt.Errorf("open part %s: %w", h.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return File{}, fmt.Errorf("read part %s: %w", h.Filename, err)
	}

	return File{
		Name:         h.Filename,
		DeclaredType: h.Header.Get("Content-Type"),
		Data:         data,
	}, nil
}

// SingleFile reads exactly one file from field. Files sent under any other
// field, or a second file, are rejected.
func SingleFile(c *gin.Context, field string, maxSize int64) (File, error) {
	form, err := parseForm(c, maxSize+formOverhead)
	if err != nil {
		return File{}, err
	}
	defer form.RemoveAll()

	for name, headers := range form.File {
		if name != field && len(headers) > 0 {
			return File{}, ErrUnexpectedField
		}
	}

	headers := form.File[field]
	switch {
	case len(headers) == 0:
		return File{}, ErrNoFile
	case len(headers) > 1:
		return File{}, ErrTooManyFiles
	}

	return readPart(headers[0], maxSize)
}

// Files reads every file sent under field, at most maxFiles of maxSize each.
func Files(c *gin.Context, field string, maxSize int64, maxFiles int) ([]File, error) {
	form, err := parseForm(c, maxSize*int64(maxFiles)+formOverhead)
	if err != nil {
		return nil, err
	}
	defer form.RemoveAll()

	headers := form.File[field]
	if len(headers) == 0 {
		return nil, ErrNoFile
	}
	if len(headers) > maxFiles {
		return nil, ErrTooManyFiles
	}

	files := make([]File, 0, len(headers))
	for _, h := range headers {
		f, err := readPart(h, maxSize)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
