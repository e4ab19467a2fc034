package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ============ DTOs ============

// CreatePlaceRequest - POST /api/places/
type CreatePlaceRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Dates    string `json:"dates"`
	Rating   *int   `json:"rating"`
	Review   string `json:"review"`
}

func (r CreatePlaceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.RuneLength(0, 255)),
		validation.Field(&r.Location, validation.RuneLength(0, 255)),
		validation.Field(&r.Dates, validation.RuneLength(0, 255)),
		validation.Field(&r.Rating,
			validation.Min(MinRating).Error(ErrInvalidRating.Error()),
			validation.Max(MaxRating).Error(ErrInvalidRating.Error()),
		),
	)
}

// UpdatePlaceRequest - PUT|PATCH /api/places/:id
// Nil fields are left unchanged. Both deleted_image_ids and deleted_photos
// are accepted; the web client sends the latter.
type UpdatePlaceRequest struct {
	Name            *string `json:"name"`
	Location        *string `json:"location"`
	Dates           *string `json:"dates"`
	Rating          *int    `json:"rating"`
	Review          *string `json:"review"`
	DeletedImageIDs IDList  `json:"deleted_image_ids"`
	DeletedPhotos   IDList  `json:"deleted_photos"`
}

func (r UpdatePlaceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.RuneLength(0, 255)),
		validation.Field(&r.Location, validation.RuneLength(0, 255)),
		validation.Field(&r.Dates, validation.RuneLength(0, 255)),
		validation.Field(&r.Rating,
			validation.Min(MinRating).Error(ErrInvalidRating.Error()),
			validation.Max(MaxRating).Error(ErrInvalidRating.Error()),
		),
	)
}

// ImageIDsToDelete merges both deletion lists.
func (r UpdatePlaceRequest) ImageIDsToDelete() []int64 {
	return append(append([]int64{}, r.DeletedImageIDs...), r.DeletedPhotos...)
}

// IDList decodes [1,2], ["1","2"], "[1,2]" and "1,2".
type IDList []int64

func (l *IDList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err == nil {
		out := make(IDList, 0, len(raw))
		for _, item := range raw {
			id, err := strconv.ParseInt(strings.Trim(string(item), `"`), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid image id %s", item)
			}
			out = append(out, id)
		}
		*l = out
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("deleted image ids must be a list or a string")
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		return l.UnmarshalJSON([]byte(s))
	}

	out := IDList{}
	for _, part := range strings.Split(s, ",") {
		if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
			out = append(out, id)
		}
	}
	*l = out
	return nil
}

// ListPlacesResponse is the cached shape of GET /api/places/.
type ListPlacesResponse []Place
