package repository

import (
	"context"

	"roomtour-backend/internal/domains/place/model"
)

// PlaceRepository - place rows. Returned places carry their images.
type PlaceRepository interface {
	// List returns every place, newest first.
	List(ctx context.Context) ([]model.Place, error)
	// Returns: model.ErrPlaceNotFound
	GetByID(ctx context.Context, id int64) (*model.Place, error)
	// Returns: model.ErrPlaceNotFound
	GetBySlug(ctx context.Context, slug string) (*model.Place, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// Create assigns ID and timestamps.
	// Returns: model.ErrSlugConflict
	Create(ctx context.Context, p *model.Place) error
	// Update writes the editable columns; slug never changes.
	Update(ctx context.Context, p *model.Place) error
	// Delete removes the place and its image rows.
	Delete(ctx context.Context, id int64) error
}

// ImageRepository - place_images rows.
type ImageRepository interface {
	// AddImages appends after the existing images of the place and fills in
	// ID and Order.
	AddImages(ctx context.Context, placeID int64, images []*model.PlaceImage) error
	// Returns: model.ErrImageNotFound
	GetImage(ctx context.Context, id int64) (*model.PlaceImage, error)
	ListImages(ctx context.Context, placeID int64) ([]model.PlaceImage, error)
	UpdateVariants(ctx context.Context, id int64, imageURL, thumbnailURL string) error
	// DeleteImages removes the listed images of placeID (ids of other places
	// are ignored) and returns what was removed.
	DeleteImages(ctx context.Context, placeID int64, ids []int64) ([]model.PlaceImage, error)
}
