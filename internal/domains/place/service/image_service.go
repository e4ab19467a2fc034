package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"roomtour-backend/internal/domains/place/model"
	"roomtour-backend/internal/domains/place/repository"
	"roomtour-backend/internal/domains/upload"
	"roomtour-backend/internal/infrastructure/storage"
	"roomtour-backend/internal/shared"
	"roomtour-backend/pkg/cache"
)

type imageService struct {
	repo      repository.ImageRepository
	uploads   upload.Service
	validator *upload.Validator
	store     storage.FileStore
	processor *storage.ImageProcessor
	tasks     TaskQueue
	cache     cache.Cache
}

// NewImageService - tasks may be nil (no worker), cache may be nil.
func NewImageService(
	repo repository.ImageRepository,
	uploads upload.Service,
	validator *upload.Validator,
	store storage.FileStore,
	processor *storage.ImageProcessor,
	tasks TaskQueue,
	cache cache.Cache,
) ImageService {
	return &imageService{
		repo:      repo,
		uploads:   uploads,
		validator: validator,
		store:     store,
		processor: processor,
		tasks:     tasks,
		cache:     cache,
	}
}

func (s *imageService) StoreImages(ctx context.Context, placeID int64, files []upload.File) ([]model.PlaceImage, error) {
	if len(files) == 0 {
		return nil, model.ErrNoImages
	}

	// 1. Reject the whole batch if any file is bad
	for _, f := range files {
		if _, err := s.validator.Validate(f); err != nil {
			return nil, err
		}
	}

	// 2. Store originals
	records := make([]*model.PlaceImage, 0, len(files))
	var keys []string
	for _, f := range files {
		result, err := s.uploads.Store(ctx, s.validator, model.ImagePrefix(placeID), f)
		if err != nil {
			s.discard(ctx, keys)
			return nil, err
		}
		keys = append(keys, result.Key)
		records = append(records, &model.PlaceImage{
			Image:    result.Key,
			ImageURL: result.URL,
		})
	}

	// 3. Append rows
	if err := s.repo.AddImages(ctx, placeID, records); err != nil {
		s.discard(ctx, keys)
		return nil, fmt.Errorf("add images to place %d: %w", placeID, err)
	}

	// 4. Variants
	out := make([]model.PlaceImage, 0, len(records))
	for _, img := range records {
		s.scheduleProcessing(ctx, img)
		out = append(out, *img)
	}

	log.Info().Int64("place_id", placeID).Int("count", len(out)).Msg("Place images uploaded")
	return out, nil
}

func (s *imageService) discard(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.uploads.Remove(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("[ImageService] failed to remove orphan file")
		}
	}
}

func (s *imageService) scheduleProcessing(ctx context.Context, img *model.PlaceImage) {
	if s.tasks != nil {
		err := s.tasks.EnqueueProcessImage(ctx, shared.ProcessImagePayload{ImageID: img.ID})
		if err == nil {
			return
		}
		log.Warn().Err(err).Int64("image_id", img.ID).Msg("[ImageService] enqueue failed, processing inline")
	}

	if err := s.ProcessImage(ctx, img.ID); err != nil {
		log.Warn().Err(err).Int64("image_id", img.ID).Msg("[ImageService] inline processing failed")
		return
	}
	if fresh, err := s.repo.GetImage(ctx, img.ID); err == nil {
		*img = *fresh
	}
}

func (s *imageService) ProcessImage(ctx context.Context, imageID int64) error {
	// 1. Load record and original
	img, err := s.repo.GetImage(ctx, imageID)
	if err != nil {
		return fmt.Errorf("failed to get image: %w", err)
	}

	original, err := s.store.Download(ctx, img.Image)
	if err != nil {
		return fmt.Errorf("failed to download original %s: %w", img.Image, err)
	}

	// 2. Render
	if _, err := s.processor.ValidateImage(original); err != nil {
		return fmt.Errorf("invalid image %d: %w", imageID, err)
	}
	variants, err := s.processor.ProcessImage(original)
	if err != nil {
		return fmt.Errorf("failed to process image %d: %w", imageID, err)
	}

	// 3. Upload variants
	urls := make(map[string]string, len(variants))
	for name, data := range variants {
		key := model.VariantKey(img.PlaceID, img.ID, name)
		url, err := s.store.Upload(ctx, key, data, "image/jpeg")
		if err != nil {
			return fmt.Errorf("failed to upload variant %s: %w", name, err)
		}
		urls[name] = url
	}

	// 4. Point the record at them
	if err := s.repo.UpdateVariants(ctx, imageID, urls[storage.VariantLarge], urls[storage.VariantThumbnail]); err != nil {
		return fmt.Errorf("failed to update variants: %w", err)
	}
	s.invalidate(ctx)

	log.Info().Int64("image_id", imageID).Int64("place_id", img.PlaceID).Msg("Place image processed")
	return nil
}

func (s *imageService) RemoveImages(ctx context.Context, placeID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	removed, err := s.repo.DeleteImages(ctx, placeID, ids)
	if err != nil {
		return fmt.Errorf("delete images of place %d: %w", placeID, err)
	}
	if len(removed) == 0 {
		return nil
	}

	var keys []string
	for _, img := range removed {
		keys = append(keys,
			img.Image,
			model.VariantKey(placeID, img.ID, storage.VariantLarge),
			model.VariantKey(placeID, img.ID, storage.VariantThumbnail),
		)
	}
	return s.scheduleDelete(ctx, shared.DeleteImagesPayload{PlaceID: placeID, Keys: keys})
}

func (s *imageService) RemovePlaceFiles(ctx context.Context, placeID int64) error {
	return s.scheduleDelete(ctx, shared.DeleteImagesPayload{PlaceID: placeID, Prefix: model.ImagePrefix(placeID)})
}

func (s *imageService) scheduleDelete(ctx context.Context, payload shared.DeleteImagesPayload) error {
	if s.tasks != nil {
		err := s.tasks.EnqueueDeleteImages(ctx, payload)
		if err == nil {
			return nil
		}
		log.Warn().Err(err).Int64("place_id", payload.PlaceID).Msg("[ImageService] enqueue failed, deleting inline")
	}
	return s.DeleteFiles(ctx, payload)
}

func (s *imageService) DeleteFiles(ctx context.Context, payload shared.DeleteImagesPayload) error {
	var errs []error
	for _, key := range payload.Keys {
		if err := s.store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	if payload.Prefix != "" {
		if err := s.store.DeleteByPrefix(ctx, payload.Prefix); err != nil {
			errs = append(errs, fmt.Errorf("delete prefix %s: %w", payload.Prefix, err))
		}
	}
	return errors.Join(errs...)
}

func (s *imageService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, model.CacheKeyPattern); err != nil {
		log.Warn().Err(err).Msg("[ImageService] failed to invalidate place cache")
	}
}
