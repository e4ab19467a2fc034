package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomtour-backend/internal/domains/place/model"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestPostgresPlace_GetByID(t *testing.T) {
	mock := newMock(t)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, slug, name, location, dates, rating, review, created_at, updated_at FROM places WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(placeColumns).
			AddRow(int64(7), "kazan", "Казань", "Татарстан", "май 2024", 4, "ok", now, now))
	mock.ExpectQuery(`FROM place_images WHERE place_id IN \(\$1\) ORDER BY place_id, sort_order, id`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(imageColumns).
			AddRow(int64(1), int64(7), "places/7/a.jpg", "http://cdn/a.jpg", "", 0, now))

	repo := NewPostgresPlaceRepository(mock)
	p, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Казань", p.Name)
	require.Len(t, p.Images, 1)
	assert.Equal(t, "places/7/a.jpg", p.Images[0].Image)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPlace_GetBySlug_NotFound(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`FROM places WHERE slug = \$1`).
		WithArgs("nowhere").
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresPlaceRepository(mock)
	_, err := repo.GetBySlug(context.Background(), "nowhere")
	assert.ErrorIs(t, err, model.ErrPlaceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPlace_Create(t *testing.T) {
	mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO places \(slug,name,location,dates,rating,review\) VALUES \(\$1,\$2,\$3,\$4,\$5,\$6\) RETURNING id, created_at, updated_at`).
		WithArgs("kazan", "Казань", "", "", 5, "").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(12), now, now))

	repo := NewPostgresPlaceRepository(mock)
	p := &model.Place{Slug: "kazan", Name: "Казань", Rating: 5}
	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, int64(12), p.ID)
	assert.NotNil(t, p.Images)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPlace_Create_SlugConflict(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO places`).
		WithArgs("kazan", "Казань", "", "", 0, "").
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	repo := NewPostgresPlaceRepository(mock)
	err := repo.Create(context.Background(), &model.Place{Slug: "kazan", Name: "Казань"})
	assert.ErrorIs(t, err, model.ErrSlugConflict)
}

func TestPostgresPlace_Delete_NotFound(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`DELETE FROM places WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewPostgresPlaceRepository(mock)
	assert.ErrorIs(t, repo.Delete(context.Background(), 99), model.ErrPlaceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresImage_AddImages(t *testing.T) {
	mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM places WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(sort_order\) \+ 1, 0\) FROM place_images`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"next"}).AddRow(3))
	mock.ExpectQuery(`INSERT INTO place_images`).
		WithArgs(int64(7), "places/7/a.jpg", "http://cdn/a.jpg", "", 3).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(40), now))
	mock.ExpectQuery(`INSERT INTO place_images`).
		WithArgs(int64(7), "places/7/b.jpg", "http://cdn/b.jpg", "", 4).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(41), now))
	mock.ExpectCommit()

	repo := NewPostgresImageRepository(mock)
	images := []*model.PlaceImage{
		{Image: "places/7/a.jpg", ImageURL: "http://cdn/a.jpg"},
		{Image: "places/7/b.jpg", ImageURL: "http://cdn/b.jpg"},
	}
	require.NoError(t, repo.AddImages(context.Background(), 7, images))
	assert.Equal(t, int64(41), images[1].ID)
	assert.Equal(t, 4, images[1].Order)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresImage_AddImages_RollsBackOnMissingPlace(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(int64(8)).WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	repo := NewPostgresImageRepository(mock)
	err := repo.AddImages(context.Background(), 8, []*model.PlaceImage{{Image: "x"}})
	assert.ErrorIs(t, err, model.ErrPlaceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresImage_DeleteImages(t *testing.T) {
	mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`DELETE FROM place_images WHERE id IN \(\$1,\$2\) AND place_id = \$3 RETURNING id`).
		WithArgs(int64(1), int64(2), int64(7)).
		WillReturnRows(pgxmock.NewRows(imageColumns).
			AddRow(int64(1), int64(7), "places/7/a.jpg", "http://cdn/a.jpg", "", 0, now))

	repo := NewPostgresImageRepository(mock)
	removed, err := repo.DeleteImages(context.Background(), 7, []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "places/7/a.jpg", removed[0].Image)
	assert.NoError(t, mock.ExpectationsWereMet())
}
