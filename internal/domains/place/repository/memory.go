package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"roomtour-backend/internal/domains/place/model"
)

// MemoryStore keeps places in process memory and implements both
// PlaceRepository and ImageRepository. It starts with the fixture place.
type MemoryStore struct {
	mu          sync.RWMutex
	places      map[int64]*model.Place
	slugs       map[string]int64
	images      map[int64]*model.PlaceImage
	nextPlaceID int64
	nextImageID int64
	now         func() time.Time
}

var (
	_ PlaceRepository = (*MemoryStore)(nil)
	_ ImageRepository = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		places:      make(map[int64]*model.Place),
		slugs:       make(map[string]int64),
		images:      make(map[int64]*model.PlaceImage),
		nextPlaceID: model.FixtureID + 1,
		nextImageID: 1,
		now:         time.Now,
	}

	fixture := model.Fixture()
	s.places[fixture.ID] = &fixture
	s.slugs[fixture.Slug] = fixture.ID
	return s
}

// snapshot copies p with its images in display order. Caller holds mu.
func (s *MemoryStore) snapshot(p *model.Place) model.Place {
	out := *p
	out.Images = s.imagesOf(p.ID)
	return out
}

func (s *MemoryStore) imagesOf(placeID int64) []model.PlaceImage {
	images := []model.PlaceImage{}
	for _, img := range s.images {
		if img.PlaceID == placeID {
			images = append(images, *img)
		}
	}
	sort.Slice(images, func(i, j int) bool {
		if images[i].Order != images[j].Order {
			return images[i].Order < images[j].Order
		}
		return images[i].ID < images[j].ID
	})
	return images
}

func (s *MemoryStore) List(_ context.Context) ([]model.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Place, 0, len(s.places))
	for _, p := range s.places {
		out = append(out, s.snapshot(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id int64) (*model.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.places[id]
	if !ok {
		return nil, model.ErrPlaceNotFound
	}
	out := s.snapshot(p)
	return &out, nil
}

func (s *MemoryStore) GetBySlug(ctx context.Context, slug string) (*model.Place, error) {
	s.mu.RLock()
	id, ok := s.slugs[slug]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrPlaceNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *MemoryStore) SlugExists(_ context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.slugs[slug]
	return ok, nil
}

func (s *MemoryStore) Create(_ context.Context, p *model.Place) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.slugs[p.Slug]; taken {
		return model.ErrSlugConflict
	}

	p.ID = s.nextPlaceID
	s.nextPlaceID++
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	p.Images = []model.PlaceImage{}

	stored := *p
	stored.Images = nil
	s.places[p.ID] = &stored
	s.slugs[p.Slug] = p.ID
	return nil
}

func (s *MemoryStore) Update(_ context.Context, p *model.Place) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.places[p.ID]
	if !ok {
		return model.ErrPlaceNotFound
	}

	existing.Name = p.Name
	existing.Location = p.Location
	existing.Dates = p.Dates
	existing.Rating = p.Rating
	existing.Review = p.Review
	existing.UpdatedAt = s.now()
	p.UpdatedAt = existing.UpdatedAt
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.places[id]
	if !ok {
		return model.ErrPlaceNotFound
	}
	delete(s.slugs, p.Slug)
	delete(s.places, id)
	for imgID, img := range s.images {
		if img.PlaceID == id {
			delete(s.images, imgID)
		}
	}
	return nil
}

func (s *MemoryStore) AddImages(_ context.Context, placeID int64, images []*model.PlaceImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.places[placeID]; !ok {
		return model.ErrPlaceNotFound
	}

	next := 0
	for _, img := range s.images {
		if img.PlaceID == placeID && img.Order >= next {
			next = img.Order + 1
		}
	}

	now := s.now()
	for _, img := range images {
		img.ID = s.nextImageID
		s.nextImageID++
		img.PlaceID = placeID
		img.Order = next
		img.CreatedAt = now
		next++

		stored := *img
		s.images[img.ID] = &stored
	}
	return nil
}

func (s *MemoryStore) GetImage(_ context.Context, id int64) (*model.PlaceImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	img, ok := s.images[id]
	if !ok {
		return nil, model.ErrImageNotFound
	}
	out := *img
	return &out, nil
}

func (s *MemoryStore) ListImages(_ context.Context, placeID int64) ([]model.PlaceImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.imagesOf(placeID), nil
}

func (s *MemoryStore) UpdateVariants(_ context.Context, id int64, imageURL, thumbnailURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	img, ok := s.images[id]
	if !ok {
		return model.ErrImageNotFound
	}
	if imageURL != "" {
		img.ImageURL = imageURL
	}
	img.ThumbnailURL = thumbnailURL
	return nil
}

func (s *MemoryStore) DeleteImages(_ context.Context, placeID int64, ids []int64) ([]model.PlaceImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []model.PlaceImage
	for _, id := range ids {
		img, ok := s.images[id]
		if !ok || img.PlaceID != placeID {
			continue
		}
		removed = append(removed, *img)
		delete(s.images, id)
	}
	return removed, nil
}
