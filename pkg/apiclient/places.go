package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// PlacesPath is the collection path; the web client always uses trailing slashes.
const PlacesPath = "/places/"

type Place struct {
	ID        int64        `json:"id"`
	Slug      string       `json:"slug"`
	Name      string       `json:"name"`
	Location  string       `json:"location"`
	Dates     string       `json:"dates"`
	Rating    int          `json:"rating"`
	Review    string       `json:"review"`
	CreatedAt string       `json:"created_at,omitempty"`
	Images    []PlaceImage `json:"images"`
}

// Identifier is the slug, or the id when the slug is empty.
func (p Place) Identifier() string {
	if p.Slug != "" {
		return p.Slug
	}
	return fmt.Sprint(p.ID)
}

type PlaceImage struct {
	ID           int64  `json:"id"`
	Image        string `json:"image"`
	ImageURL     string `json:"image_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Order        int    `json:"order"`
}

// PlaceInput is the body of create and update. Nil fields are not sent,
// so an update only touches what is set.
type PlaceInput struct {
	Name          *string `json:"name,omitempty"`
	Location      *string `json:"location,omitempty"`
	Dates         *string `json:"dates,omitempty"`
	Rating        *int    `json:"rating,omitempty"`
	Review        *string `json:"review,omitempty"`
	DeletedPhotos []int64 `json:"deleted_photos,omitempty"`
}

// PlacePath returns /places/<identifier>/.
func PlacePath(identifier string) string {
	return PlacesPath + url.PathEscape(identifier) + "/"
}

func (c *Client) ListPlaces(ctx context.Context) ([]Place, error) {
	var places []Place
	if err := c.Get(ctx, PlacesPath, nil, &places); err != nil {
		return nil, err
	}
	return places, nil
}

func (c *Client) GetPlace(ctx context.Context, identifier string) (*Place, error) {
	var p Place
	if err := c.Get(ctx, PlacePath(identifier), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreatePlace(ctx context.Context, in PlaceInput) (*Place, error) {
	var p Place
	if err := c.Post(ctx, PlacesPath, in, &p); err != nil {
		return nil, err
	}
	c.ClearCacheFor(PlacesPath, nil)
	return &p, nil
}

func (c *Client) UpdatePlace(ctx context.Context, identifier string, in PlaceInput) (*Place, error) {
	var p Place
	if err := c.Put(ctx, PlacePath(identifier), in, &p); err != nil {
		return nil, err
	}
	c.ClearCacheFor(PlacePath(identifier), nil)
	c.ClearCacheFor(PlacesPath, nil)
	return &p, nil
}

func (c *Client) DeletePlace(ctx context.Context, identifier string) error {
	if err := c.Delete(ctx, PlacePath(identifier)); err != nil {
		return err
	}
	c.ClearCacheFor(PlacePath(identifier), nil)
	c.ClearCacheFor(PlacesPath, nil)
	return nil
}

// UploadImages appends photos to a place (multipart field "images").
func (c *Client) UploadImages(ctx context.Context, identifier string, files []File) ([]PlaceImage, error) {
	var images []PlaceImage
	if err := c.PostFiles(ctx, PlacePath(identifier)+"upload_images/", "images", files, &images); err != nil {
		return nil, err
	}
	c.ClearCacheFor(PlacePath(identifier), nil)
	c.ClearCacheFor(PlacesPath, nil)
	return images, nil
}

// Health probes GET /health, bypassing the cache.
func (c *Client) Health(ctx context.Context) error {
	_, _, err := c.send(ctx, http.MethodGet, "/health", nil, nil, "")
	return err
}
