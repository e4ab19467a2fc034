package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"roomtour-backend/internal/domains/place/model"
	placeService "roomtour-backend/internal/domains/place/service"
	"roomtour-backend/internal/shared"
)

// ProcessImageHandler renders the large and thumbnail variants of a place photo.
type ProcessImageHandler struct {
	imageService placeService.ImageService
}

func NewProcessImageHandler(imageService placeService.ImageService) *ProcessImageHandler {
	return &ProcessImageHandler{
		imageService: imageService,
	}
}

func (h *ProcessImageHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ProcessImagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal ProcessImage payload")
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	log.Info().
		Int64("image_id", payload.ImageID).
		Msg("Processing place image variants")

	err := h.imageService.ProcessImage(ctx, payload.ImageID)
	if errors.Is(err, model.ErrImageNotFound) {
		// deleted before the worker got to it
		log.Warn().Int64("image_id", payload.ImageID).Msg("Image is gone, skipping")
		return nil
	}
	if err != nil {
		log.Error().
			Err(err).
			Int64("image_id", payload.ImageID).
			Msg("Failed to process image")
		return fmt.Errorf("process image: %w", err)
	}

	log.Info().
		Int64("image_id", payload.ImageID).
		Msg("Place image processed successfully")

	return nil
}
