package main

import (
	"github.com/hibiken/asynq"

	placeJob "roomtour-backend/internal/domains/place/job"
	"roomtour-backend/internal/shared"
	"roomtour-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	processPlaceImage *placeJob.ProcessImageHandler
	deletePlaceImages *placeJob.DeleteImagesHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		processPlaceImage: placeJob.NewProcessImageHandler(c.ImageService),
		deletePlaceImages: placeJob.NewDeleteImagesHandler(c.ImageService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeProcessPlaceImage, h.processPlaceImage.ProcessTask)
	mux.HandleFunc(shared.TypeDeletePlaceImages, h.deletePlaceImages.ProcessTask)
}
