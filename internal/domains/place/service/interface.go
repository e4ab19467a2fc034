package service

import (
	"context"

	"roomtour-backend/internal/domains/place/model"
	"roomtour-backend/internal/domains/upload"
	"roomtour-backend/internal/shared"
)

// PlaceService - business logic behind /api/places
type PlaceService interface {
	ListPlaces(ctx context.Context) ([]model.Place, error)
	// GetPlace looks up by numeric id or by slug.
	GetPlace(ctx context.Context, identifier string) (*model.Place, error)
	CreatePlace(ctx context.Context, req model.CreatePlaceRequest) (*model.Place, error)
	UpdatePlace(ctx context.Context, identifier string, req model.UpdatePlaceRequest) (*model.Place, error)
	DeletePlace(ctx context.Context, identifier string) (*model.Place, error)
	UploadImages(ctx context.Context, identifier string, files []upload.File) ([]model.PlaceImage, error)
}

// ImageService - photo files and their variants
type ImageService interface {
	// StoreImages validates every file, stores them and appends the records.
	StoreImages(ctx context.Context, placeID int64, files []upload.File) ([]model.PlaceImage, error)
	// ProcessImage renders the large and thumbnail variants (worker side).
	ProcessImage(ctx context.Context, imageID int64) error
	// RemoveImages deletes image rows of a place and schedules their files.
	RemoveImages(ctx context.Context, placeID int64, ids []int64) error
	// RemovePlaceFiles schedules removal of everything stored for a place.
	RemovePlaceFiles(ctx context.Context, placeID int64) error
	// DeleteFiles removes stored objects (worker side).
	DeleteFiles(ctx context.Context, payload shared.DeleteImagesPayload) error
}

// TaskQueue hands work to the background worker. A nil TaskQueue makes the
// image service do the work inline.
type TaskQueue interface {
	EnqueueProcessImage(ctx context.Context, payload shared.ProcessImagePayload) error
	EnqueueDeleteImages(ctx context.Context, payload shared.DeleteImagesPayload) error
}
