package model

import "time"

// ============ ENTITIES ============

// Place - a stay the user logged
type Place struct {
	ID        int64        `json:"id" db:"id"`
	Slug      string       `json:"slug" db:"slug"`
	Name      string       `json:"name" db:"name"`
	Location  string       `json:"location" db:"location"`
	Dates     string       `json:"dates" db:"dates"`
	Rating    int          `json:"rating" db:"rating"`
	Review    string       `json:"review" db:"review"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"-" db:"updated_at"`
	Images    []PlaceImage `json:"images"`
}

// PlaceImage - one photo of a place. ThumbnailURL stays empty until the
// worker has rendered the variants.
type PlaceImage struct {
	ID           int64     `json:"id" db:"id"`
	PlaceID      int64     `json:"-" db:"place_id"`
	Image        string    `json:"image" db:"image"` // storage key
	ImageURL     string    `json:"image_url" db:"image_url"`
	ThumbnailURL string    `json:"thumbnail_url" db:"thumbnail_url"`
	Order        int       `json:"order" db:"sort_order"`
	CreatedAt    time.Time `json:"-" db:"created_at"`
}

// ============ FIXTURE ============

const (
	DefaultName   = "Без названия"
	MinRating     = 0
	MaxRating     = 5
	FixtureID     = 444
	FixtureSlug   = "testovoe-mesto"
	ImageKeyRoot  = "places/"
	MaxImageBatch = 20
)

// ImageExtensions are accepted for place photos.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// Fixture is the demo record every memory store starts with.
func Fixture() Place {
	return Place{
		ID:        FixtureID,
		Slug:      FixtureSlug,
		Name:      "Тестовое место",
		Location:  "Тестовый адрес",
		Dates:     "1–31 мар 2025",
		Rating:    5,
		Review:    "Тестовый отзыв",
		CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Images:    []PlaceImage{},
	}
}
