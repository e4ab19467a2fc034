package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"roomtour-backend/internal/domains/place/model"
	"roomtour-backend/internal/domains/place/service"
	"roomtour-backend/internal/domains/upload"
	"roomtour-backend/internal/shared/response"
	"roomtour-backend/pkg/cache"
)

// ImagesField is the multipart field of POST /api/places/:id/upload_images.
const ImagesField = "images"

const msgInvalidBody = "Некорректные данные запроса"

type Handler struct {
	service      service.PlaceService
	cache        cache.Cache
	cacheTTL     time.Duration
	imageMaxSize int64
}

func NewHandler(service service.PlaceService, cache cache.Cache, cacheTTL time.Duration, imageMaxSize int64) *Handler {
	return &Handler{
		service:      service,
		cache:        cache,
		cacheTTL:     cacheTTL,
		imageMaxSize: imageMaxSize,
	}
}

// ListPlaces - GET /api/places
func (h *Handler) ListPlaces(c *gin.Context) {
	ctx := c.Request.Context()

	// 1. Cache
	var cached []model.Place
	found, err := h.cache.Get(ctx, model.CacheKeyList, &cached)
	if found {
		response.Success(c, http.StatusOK, cached)
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("key", model.CacheKeyList).Msg("[PlaceHandler] cache error")
	}

	// 2. Miss
	places, err := h.service.ListPlaces(ctx)
	if model.HandlePlaceError(c, "", err) {
		return
	}

	if err := h.cache.Set(ctx, model.CacheKeyList, places, h.cacheTTL); err != nil {
		log.Warn().Err(err).Msg("[PlaceHandler] failed to cache place list")
	}

	response.Success(c, http.StatusOK, places)
}

// GetPlace - GET /api/places/:id (numeric id or slug)
func (h *Handler) GetPlace(c *gin.Context) {
	ctx := c.Request.Context()
	identifier := c.Param("id")

	cacheKey := model.DetailCacheKey(identifier)
	var cached model.Place
	found, err := h.cache.Get(ctx, cacheKey, &cached)
	if found {
		response.Success(c, http.StatusOK, &cached)
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("[PlaceHandler] cache error")
	}

	place, err := h.service.GetPlace(ctx, identifier)
	if model.HandlePlaceError(c, identifier, err) {
		return
	}

	if err := h.cache.Set(ctx, cacheKey, place, h.cacheTTL); err != nil {
		log.Warn().Err(err).Msg("[PlaceHandler] failed to cache place")
	}

	response.Success(c, http.StatusOK, place)
}

// CreatePlace - POST /api/places
func (h *Handler) CreatePlace(c *gin.Context) {
	// 1. Bind
	var req model.CreatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, msgInvalidBody)
		return
	}

	// 2. Validate
	if err := req.Validate(); err != nil {
		response.BadRequest(c, model.ValidationMessage(err))
		return
	}

	// 3. Create
	place, err := h.service.CreatePlace(c.Request.Context(), req)
	if model.HandlePlaceError(c, "", err) {
		return
	}

	h.invalidate(c)
	response.Success(c, http.StatusCreated, place)
}

// UpdatePlace - PUT|PATCH /api/places/:id
func (h *Handler) UpdatePlace(c *gin.Context) {
	identifier := c.Param("id")

	var req model.UpdatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, msgInvalidBody)
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, model.ValidationMessage(err))
		return
	}

	place, err := h.service.UpdatePlace(c.Request.Context(), identifier, req)
	if model.HandlePlaceError(c, identifier, err) {
		return
	}

	h.invalidate(c)
	response.Success(c, http.StatusOK, place)
}

// DeletePlace - DELETE /api/places/:id
func (h *Handler) DeletePlace(c *gin.Context) {
	identifier := c.Param("id")

	_, err := h.service.DeletePlace(c.Request.Context(), identifier)
	if model.HandlePlaceError(c, identifier, err) {
		return
	}

	h.invalidate(c)
	c.Status(http.StatusNoContent)
}

// UploadImages - POST /api/places/:id/upload_images
func (h *Handler) UploadImages(c *gin.Context) {
	identifier := c.Param("id")

	// 1. Read parts
	files, err := upload.Files(c, ImagesField, h.imageMaxSize, model.MaxImageBatch)
	if model.HandlePlaceError(c, identifier, err) {
		return
	}

	// 2. Store and attach
	images, err := h.service.UploadImages(c.Request.Context(), identifier, files)
	if model.HandlePlaceError(c, identifier, err) {
		return
	}

	h.invalidate(c)
	response.Success(c, http.StatusCreated, images)
}

func (h *Handler) invalidate(c *gin.Context) {
	if err := h.cache.DeletePattern(c.Request.Context(), model.CacheKeyPattern); err != nil {
		log.Warn().Err(err).Msg("[PlaceHandler] failed to invalidate place cache")
	}
}
