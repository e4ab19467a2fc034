package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"roomtour-backend/internal/domains/upload"
	"roomtour-backend/internal/infrastructure/storage"
	"roomtour-backend/internal/shared/utils"
)

type uploadService struct {
	store storage.FileStore
}

func NewUploadService(store storage.FileStore) upload.Service {
	return &uploadService{store: store}
}

func (s *uploadService) Store(ctx context.Context, v *upload.Validator, prefix string, f upload.File) (*upload.Result, error) {
	// 1. Validate before anything touches the store
	contentType, err := v.Validate(f)
	if err != nil {
		log.Warn().Err(err).Str("file", f.Name).Msg("[UploadService] rejected file")
		return nil, err
	}

	// 2. Random name, original extension
	name, err := utils.RandomHex(16)
	if err != nil {
		return nil, fmt.Errorf("generate filename: %w", err)
	}
	filename := name + f.Ext()
	key := prefix + filename

	// 3. Persist
	url, err := s.store.Upload(ctx, key, f.Data, contentType)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", key, err)
	}

	log.Info().
		Str("key", key).
		Str("content_type", contentType).
		Int("size", len(f.Data)).
		Msg("File stored")

	return &upload.Result{
		Filename:    filename,
		Key:         key,
		URL:         url,
		ContentType: contentType,
		Size:        int64(len(f.Data)),
	}, nil
}

func (s *uploadService) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
