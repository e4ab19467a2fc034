package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"roomtour-backend/internal/domains/place/model"
	"roomtour-backend/internal/domains/place/repository"
	"roomtour-backend/internal/domains/upload"
	"roomtour-backend/internal/shared/utils"
)

const (
	maxSlugSuffix   = 1000
	maxCreateTries  = 3
	defaultSlugBase = "place"
)

type placeService struct {
	repo   repository.PlaceRepository
	images ImageService
}

func NewPlaceService(repo repository.PlaceRepository, images ImageService) PlaceService {
	return &placeService{
		repo:   repo,
		images: images,
	}
}

func (s *placeService) ListPlaces(ctx context.Context) ([]model.Place, error) {
	places, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	return places, nil
}

func (s *placeService) GetPlace(ctx context.Context, identifier string) (*model.Place, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, model.ErrPlaceNotFound
	}

	if id, ok := utils.ParseNumericID(identifier); ok {
		return s.repo.GetByID(ctx, id)
	}
	return s.repo.GetBySlug(ctx, identifier)
}

// uniqueSlug derives a slug from name and appends -2, -3, ... until it is free.
// All-digit slugs get a prefix so they never shadow numeric ids.
func (s *placeService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := utils.GenerateSlug(name)
	if base == "" {
		base = defaultSlugBase
	}
	if _, numeric := utils.ParseNumericID(base); numeric {
		base = defaultSlugBase + "-" + base
	}

	candidate := base
	for i := 2; i <= maxSlugSuffix; i++ {
		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", model.ErrSlugExhausted
}

func (s *placeService) CreatePlace(ctx context.Context, req model.CreatePlaceRequest) (*model.Place, error) {
	// 1. Validate
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. Defaults
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = model.DefaultName
	}
	rating := 0
	if req.Rating != nil {
		rating = *req.Rating
	}

	p := &model.Place{
		Name:     name,
		Location: strings.TrimSpace(req.Location),
		Dates:    strings.TrimSpace(req.Dates),
		Rating:   rating,
		Review:   req.Review,
	}

	// 3. Insert, retrying when another request took the slug first
	for attempt := 1; ; attempt++ {
		slug, err := s.uniqueSlug(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("allocate slug: %w", err)
		}
		p.Slug = slug

		err = s.repo.Create(ctx, p)
		if err == nil {
			break
		}
		if !errors.Is(err, model.ErrSlugConflict) || attempt >= maxCreateTries {
			return nil, fmt.Errorf("create place: %w", err)
		}
	}

	log.Info().Int64("place_id", p.ID).Str("slug", p.Slug).Msg("Place created")
	return p, nil
}

func (s *placeService) UpdatePlace(ctx context.Context, identifier string, req model.UpdatePlaceRequest) (*model.Place, error) {
	// 1. Validate
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. Load
	p, err := s.GetPlace(ctx, identifier)
	if err != nil {
		return nil, err
	}

	// 3. Drop images first
	if ids := req.ImageIDsToDelete(); len(ids) > 0 {
		if err := s.images.RemoveImages(ctx, p.ID, ids); err != nil {
			return nil, err
		}
	}

	// 4. Apply provided fields
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
		if p.Name == "" {
			p.Name = model.DefaultName
		}
	}
	if req.Location != nil {
		p.Location = strings.TrimSpace(*req.Location)
	}
	if req.Dates != nil {
		p.Dates = strings.TrimSpace(*req.Dates)
	}
	if req.Rating != nil {
		p.Rating = *req.Rating
	}
	if req.Review != nil {
		p.Review = *req.Review
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update place %d: %w", p.ID, err)
	}

	log.Info().Int64("place_id", p.ID).Msg("Place updated")
	return s.repo.GetByID(ctx, p.ID)
}

func (s *placeService) DeletePlace(ctx context.Context, identifier string) (*model.Place, error) {
	p, err := s.GetPlace(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("delete place %d: %w", p.ID, err)
	}

	if err := s.images.RemovePlaceFiles(ctx, p.ID); err != nil {
		log.Warn().Err(err).Int64("place_id", p.ID).Msg("[PlaceService] failed to remove place files")
	}

	log.Info().Int64("place_id", p.ID).Str("slug", p.Slug).Msg("Place deleted")
	return p, nil
}

func (s *placeService) UploadImages(ctx context.Context, identifier string, files []upload.File) ([]model.PlaceImage, error) {
	if len(files) == 0 {
		return nil, model.ErrNoImages
	}

	p, err := s.GetPlace(ctx, identifier)
	if err != nil {
		return nil, err
	}

	return s.images.StoreImages(ctx, p.ID, files)
}
