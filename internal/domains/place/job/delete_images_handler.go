package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	placeService "roomtour-backend/internal/domains/place/service"
	"roomtour-backend/internal/shared"
)

// DeleteImagesHandler removes stored files of deleted photos or places.
type DeleteImagesHandler struct {
	imageService placeService.ImageService
}

func NewDeleteImagesHandler(imageService placeService.ImageService) *DeleteImagesHandler {
	return &DeleteImagesHandler{
		imageService: imageService,
	}
}

func (h *DeleteImagesHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.DeleteImagesPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal DeleteImages payload")
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	log.Info().
		Int64("place_id", payload.PlaceID).
		Int("keys", len(payload.Keys)).
		Str("prefix", payload.Prefix).
		Msg("Deleting place images")

	if err := h.imageService.DeleteFiles(ctx, payload); err != nil {
		log.Error().
			Err(err).
			Int64("place_id", payload.PlaceID).
			Msg("Failed to delete place images")
		return fmt.Errorf("delete images: %w", err)
	}

	log.Info().
		Int64("place_id", payload.PlaceID).
		Msg("Place images deleted successfully")

	return nil
}
