package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"roomtour-backend/internal/infrastructure/storage"
	"roomtour-backend/internal/shared/middleware"
	"roomtour-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	cfg := c.Config

	router := gin.New()
	router.RedirectTrailingSlash = false
	if err := router.SetTrustedProxies(cfg.App.TrustedProxies); err != nil {
		log.Warn().Err(err).Msg("Invalid TRUSTED_PROXIES, trusting none")
		_ = router.SetTrustedProxies(nil)
	}

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.CORS.Origins),
		middleware.ClientIPMiddleware(),
	)

	// Uploaded files, when they live on local disk
	if disk, ok := c.Storage.(*storage.DiskStorage); ok && cfg.Upload.ServeStatic {
		uploads := router.Group("/uploads", middleware.CrossOriginResource())
		uploads.Static("/", disk.Root())
	}

	api := router.Group("/api", middleware.RateLimit(c.Cache, cfg.RateLimit.Window, cfg.RateLimit.MaxRequests))
	{
		api.GET("/health", healthCheckHandler(c))

		setupUploadRoutes(api, c)
		setupUserRoutes(api, c)
		setupPlaceRoutes(api, c)
	}

	return router
}

// ========================================
// UPLOAD ROUTES
// ========================================
func setupUploadRoutes(api *gin.RouterGroup, c *container.Container) {
	api.POST("/upload", c.UploadHandler.Upload)
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(api *gin.RouterGroup, c *container.Container) {
	users := api.Group("/users")
	{
		users.GET("/:username", c.UserHandler.GetProfile)
		users.PATCH("/:username", c.UserHandler.UpdateProfile)
		users.POST("/:username/avatar", c.UserHandler.UpdateAvatar)
		users.GET("/:username/share", c.UserHandler.ShareProfile)
	}
}

// ========================================
// PLACE ROUTES
// ========================================
func setupPlaceRoutes(api *gin.RouterGroup, c *container.Container) {
	places := api.Group("/places")
	{
		places.GET("", c.PlaceHandler.ListPlaces)
		places.POST("", c.PlaceHandler.CreatePlace)
		places.GET("/:id", c.PlaceHandler.GetPlace)
		places.PUT("/:id", c.PlaceHandler.UpdatePlace)
		places.PATCH("/:id", c.PlaceHandler.UpdatePlace)
		places.DELETE("/:id", c.PlaceHandler.DeletePlace)
		places.POST("/:id/upload_images", c.PlaceHandler.UploadImages)
	}
}

// healthCheckHandler - GET /api/health
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
		defer cancel()

		db, cache := c.Health(checkCtx)

		status, code := "ok", http.StatusOK
		if db == container.StatusDown {
			status, code = "degraded", http.StatusServiceUnavailable
		}

		ctx.JSON(code, gin.H{
			"status":   status,
			"database": db,
			"cache":    cache,
		})
	}
}
