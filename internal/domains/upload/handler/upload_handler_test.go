package handler

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomtour-backend/internal/domains/upload"
	"roomtour-backend/internal/domains/upload/service"
	"roomtour-backend/internal/infrastructure/storage"
	"roomtour-backend/internal/shared/response"
)

type part struct {
	field, filename, contentType string
	data                         []byte
}

func multipartRequest(t *testing.T, parts ...part) *http.Request {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.filename+`"`)
		h.Set("Content-Type", p.contentType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func setup(t *testing.T, maxSize int64) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	store, err := storage.NewDiskStorage(root, "http://localhost:3000/uploads")
	require.NoError(t, err)

	v := upload.NewValidator(upload.Rules{
		MaxSize:       maxSize,
		AllowedTypes:  []string{"image/jpeg", "image/jpg", "image/png", "image/webp"},
		CheckDeclared: true,
	})
	h := NewHandler(service.NewUploadService(store), v)

	r := gin.New()
	r.POST("/api/upload", h.Upload)
	return r, root
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestUpload_Success(t *testing.T) {
	r, root := setup(t, 1<<20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, part{"file", "room.png", "image/png", pngBytes(t)}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body response.UploadBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, upload.MsgUploaded, body.Message)
	assert.Regexp(t, `^[0-9a-f]{32}\.png$`, body.Filename)
	assert.Equal(t, "http://localhost:3000/uploads/"+body.Filename, body.Path)

	_, err := os.Stat(filepath.Join(root, body.Filename))
	assert.NoError(t, err)
}

func TestUpload_Errors(t *testing.T) {
	img := pngBytes(t)

	tests := []struct {
		name  string
		parts []part
		want  string
	}{
		{"no file", nil, upload.MsgNoFile},
		{"declared gif", []part{{"file", "a.gif", "image/gif", img}}, upload.MsgUnsupportedType},
		{"spoofed type", []part{{"file", "a.png", "image/png", []byte("<html>not an image</html>")}}, upload.MsgTypeMismatch},
		{"two files", []part{{"file", "a.png", "image/png", img}, {"file", "b.png", "image/png", img}}, "Too many files"},
		{"wrong field", []part{{"avatar", "a.png", "image/png", img}}, "Unexpected field"},
		{"too large", []part{{"file", "a.png", "image/png", append(img, make([]byte, 4096)...)}}, upload.MsgFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, root := setup(t, 2048)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, multipartRequest(t, tt.parts...))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, errorOf(t, w))

			entries, err := os.ReadDir(root)
			require.NoError(t, err)
			assert.Empty(t, entries, "rejected files must not be stored")
		})
	}
}
