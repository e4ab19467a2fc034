package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomtour-backend/internal/domains/place/model"
)

func TestMemoryStore_StartsWithFixture(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	places, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, int64(model.FixtureID), places[0].ID)
	assert.NotNil(t, places[0].Images)

	bySlug, err := s.GetBySlug(ctx, model.FixtureSlug)
	require.NoError(t, err)
	assert.Equal(t, "Тестовое место", bySlug.Name)
}

func TestMemoryStore_SlugConflict(t *testing.T) {
	s := NewMemoryStore()

	err := s.Create(context.Background(), &model.Place{Slug: model.FixtureSlug, Name: "dup"})
	assert.ErrorIs(t, err, model.ErrSlugConflict)
}

func TestMemoryStore_ImagesAppendInOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p := &model.Place{Slug: "kazan", Name: "Казань"}
	require.NoError(t, s.Create(ctx, p))

	first := []*model.PlaceImage{{Image: "a.jpg"}, {Image: "b.jpg"}}
	require.NoError(t, s.AddImages(ctx, p.ID, first))
	second := []*model.PlaceImage{{Image: "c.jpg"}}
	require.NoError(t, s.AddImages(ctx, p.ID, second))

	assert.Equal(t, 2, second[0].Order)

	images, err := s.ListImages(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, images, 3)
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, []string{images[0].Image, images[1].Image, images[2].Image})

	removed, err := s.DeleteImages(ctx, p.ID, []int64{first[1].ID, 9999})
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "b.jpg", removed[0].Image)

	removed, err = s.DeleteImages(ctx, model.FixtureID, []int64{first[0].ID})
	require.NoError(t, err)
	assert.Empty(t, removed, "images of another place are left alone")
}

func TestMemoryStore_DeleteRemovesImages(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p := &model.Place{Slug: "sochi", Name: "Сочи"}
	require.NoError(t, s.Create(ctx, p))
	imgs := []*model.PlaceImage{{Image: "x.jpg"}}
	require.NoError(t, s.AddImages(ctx, p.ID, imgs))

	require.NoError(t, s.Delete(ctx, p.ID))

	_, err := s.GetImage(ctx, imgs[0].ID)
	assert.ErrorIs(t, err, model.ErrImageNotFound)
	_, err = s.GetBySlug(ctx, "sochi")
	assert.ErrorIs(t, err, model.ErrPlaceNotFound)
	assert.ErrorIs(t, s.Delete(ctx, p.ID), model.ErrPlaceNotFound)
}
