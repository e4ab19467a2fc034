package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"roomtour-backend/internal/domains/place/model"
	"roomtour-backend/pkg/database"
)

const pgUniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var (
	placeColumns = []string{"id", "slug", "name", "location", "dates", "rating", "review", "created_at", "updated_at"}
	imageColumns = []string{"id", "place_id", "image", "image_url", "thumbnail_url", "sort_order", "created_at"}
)

func scanPlace(row pgx.Row) (*model.Place, error) {
	p := &model.Place{}
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Location, &p.Dates, &p.Rating, &p.Review, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Images = []model.PlaceImage{}
	return p, nil
}

func scanImage(row pgx.Row) (*model.PlaceImage, error) {
	img := &model.PlaceImage{}
	err := row.Scan(&img.ID, &img.PlaceID, &img.Image, &img.ImageURL, &img.ThumbnailURL, &img.Order, &img.CreatedAt)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func collectImages(rows pgx.Rows) ([]model.PlaceImage, error) {
	defer rows.Close()

	images := []model.PlaceImage{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan place image: %w", err)
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}

// ============ PLACES ============

type postgresPlaceRepository struct {
	db database.DB
}

func NewPostgresPlaceRepository(db database.DB) PlaceRepository {
	return &postgresPlaceRepository{db: db}
}

// imagesFor loads the images of several places in one query.
func (r *postgresPlaceRepository) imagesFor(ctx context.Context, placeIDs []int64) (map[int64][]model.PlaceImage, error) {
	out := make(map[int64][]model.PlaceImage, len(placeIDs))
	if len(placeIDs) == 0 {
		return out, nil
	}

	query, args, err := psql.Select(imageColumns...).
		From("place_images").
		Where(sq.Eq{"place_id": placeIDs}).
		OrderBy("place_id", "sort_order", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build images query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query place images: %w", err)
	}
	images, err := collectImages(rows)
	if err != nil {
		return nil, err
	}
	for _, img := range images {
		out[img.PlaceID] = append(out[img.PlaceID], img)
	}
	return out, nil
}

func (r *postgresPlaceRepository) List(ctx context.Context) ([]model.Place, error) {
	query, args, err := psql.Select(placeColumns...).
		From("places").
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query places: %w", err)
	}
	defer rows.Close()

	places := []model.Place{}
	var ids []int64
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, *p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate places: %w", err)
	}
	rows.Close()

	images, err := r.imagesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range places {
		if imgs, ok := images[places[i].ID]; ok {
			places[i].Images = imgs
		}
	}
	return places, nil
}

func (r *postgresPlaceRepository) getOne(ctx context.Context, where sq.Eq) (*model.Place, error) {
	query, args, err := psql.Select(placeColumns...).From("places").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build place query: %w", err)
	}

	p, err := scanPlace(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrPlaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get place: %w", err)
	}

	images, err := r.imagesFor(ctx, []int64{p.ID})
	if err != nil {
		return nil, err
	}
	if imgs, ok := images[p.ID]; ok {
		p.Images = imgs
	}
	return p, nil
}

func (r *postgresPlaceRepository) GetByID(ctx context.Context, id int64) (*model.Place, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

func (r *postgresPlaceRepository) GetBySlug(ctx context.Context, slug string) (*model.Place, error) {
	return r.getOne(ctx, sq.Eq{"slug": slug})
}

func (r *postgresPlaceRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM places WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug %s: %w", slug, err)
	}
	return exists, nil
}

func (r *postgresPlaceRepository) Create(ctx context.Context, p *model.Place) error {
	query, args, err := psql.Insert("places").
		Columns("slug", "name", "location", "dates", "rating", "review").
		Values(p.Slug, p.Name, p.Location, p.Dates, p.Rating, p.Review).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return model.ErrSlugConflict
	}
	if err != nil {
		return fmt.Errorf("insert place: %w", err)
	}
	p.Images = []model.PlaceImage{}
	return nil
}

func (r *postgresPlaceRepository) Update(ctx context.Context, p *model.Place) error {
	query, args, err := psql.Update("places").
		SetMap(map[string]interface{}{
			"name":     p.Name,
			"location": p.Location,
			"dates":    p.Dates,
			"rating":   p.Rating,
			"review":   p.Review,
		}).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": p.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrPlaceNotFound
	}
	if err != nil {
		return fmt.Errorf("update place %d: %w", p.ID, err)
	}
	return nil
}

func (r *postgresPlaceRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("places").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete place %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPlaceNotFound
	}
	return nil
}

// ============ IMAGES ============

type postgresImageRepository struct {
	db database.DB
}

func NewPostgresImageRepository(db database.DB) ImageRepository {
	return &postgresImageRepository{db: db}
}

func (r *postgresImageRepository) AddImages(ctx context.Context, placeID int64, images []*model.PlaceImage) error {
	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		// 1. Lock the place so concurrent uploads get consecutive orders
		var locked int64
		err := tx.QueryRow(ctx, `SELECT id FROM places WHERE id = $1 FOR UPDATE`, placeID).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrPlaceNotFound
		}
		if err != nil {
			return fmt.Errorf("lock place %d: %w", placeID, err)
		}

		// 2. Continue after the last image
		var next int
		err = tx.QueryRow(ctx, `SELECT COALESCE(MAX(sort_order) + 1, 0) FROM place_images WHERE place_id = $1`, placeID).Scan(&next)
		if err != nil {
			return fmt.Errorf("next image order: %w", err)
		}

		// 3. Insert
		for _, img := range images {
			img.PlaceID = placeID
			img.Order = next
			next++

			query, args, err := psql.Insert("place_images").
				Columns("place_id", "image", "image_url", "thumbnail_url", "sort_order").
				Values(img.PlaceID, img.Image, img.ImageURL, img.ThumbnailURL, img.Order).
				Suffix("RETURNING id, created_at").
				ToSql()
			if err != nil {
				return fmt.Errorf("build image insert: %w", err)
			}
			if err := tx.QueryRow(ctx, query, args...).Scan(&img.ID, &img.CreatedAt); err != nil {
				return fmt.Errorf("insert image %s: %w", img.Image, err)
			}
		}
		return nil
	})
}

func (r *postgresImageRepository) GetImage(ctx context.Context, id int64) (*model.PlaceImage, error) {
	query, args, err := psql.Select(imageColumns...).From("place_images").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build image query: %w", err)
	}

	img, err := scanImage(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get image %d: %w", id, err)
	}
	return img, nil
}

func (r *postgresImageRepository) ListImages(ctx context.Context, placeID int64) ([]model.PlaceImage, error) {
	query, args, err := psql.Select(imageColumns...).
		From("place_images").
		Where(sq.Eq{"place_id": placeID}).
		OrderBy("sort_order", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build images query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list images of %d: %w", placeID, err)
	}
	return collectImages(rows)
}

func (r *postgresImageRepository) UpdateVariants(ctx context.Context, id int64, imageURL, thumbnailURL string) error {
	update := psql.Update("place_images").
		Set("thumbnail_url", thumbnailURL).
		Where(sq.Eq{"id": id})
	if imageURL != "" {
		update = update.Set("image_url", imageURL)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build variants update: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update variants of %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrImageNotFound
	}
	return nil
}

func (r *postgresImageRepository) DeleteImages(ctx context.Context, placeID int64, ids []int64) ([]model.PlaceImage, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := psql.Delete("place_images").
		Where(sq.Eq{"place_id": placeID, "id": ids}).
		Suffix("RETURNING " + strings.Join(imageColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build image delete: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("delete images of %d: %w", placeID, err)
	}
	return collectImages(rows)
}
