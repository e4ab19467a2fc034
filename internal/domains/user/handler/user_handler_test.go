package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomtour-backend/internal/domains/upload"
	uploadService "roomtour-backend/internal/domains/upload/service"
	"roomtour-backend/internal/domains/user/repository"
	"roomtour-backend/internal/domains/user/service"
	"roomtour-backend/internal/infrastructure/storage"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewDiskStorage(t.TempDir(), "http://cdn.test/uploads")
	require.NoError(t, err)
	v := upload.NewValidator(upload.Rules{MaxSize: 1 << 20, AllowedTypes: []string{"image/png"}, CheckDeclared: true})
	svc := service.NewUserService(repository.NewMemoryRepository(), uploadService.NewUploadService(store), v, "http://localhost:5173")
	h := NewUserHandler(svc, 1<<20)

	r := gin.New()
	users := r.Group("/api/users")
	users.GET("/:username", h.GetProfile)
	users.PATCH("/:username", h.UpdateProfile)
	users.POST("/:username/avatar", h.UpdateAvatar)
	users.GET("/:username/share", h.ShareProfile)
	return r
}

func TestGetProfile_Placeholder(t *testing.T) {
	r := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/anna", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"anna","name":"anna","email":"anna@example.com","avatar":null}`, w.Body.String())
}

func TestUpdateProfile_ThenGet(t *testing.T) {
	r := newRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/users/anna", strings.NewReader(`{"description":"Путешествую"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/anna", nil))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Путешествую", body["description"])
}

func TestUpdateProfile_BadJSON(t *testing.T) {
	r := newRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/users/anna", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAvatar_NoFile(t *testing.T) {
	r := newRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/users/anna/avatar", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), upload.MsgNoFile)
}

func TestShareProfile(t *testing.T) {
	r := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/anna/share", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"url":"http://localhost:5173/anna","title":"Профиль anna"}`, w.Body.String())
}
