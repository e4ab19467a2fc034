package shared

// Background task types (asynq).
const (
	TypeProcessPlaceImage = "place:process_image"
	TypeDeletePlaceImages = "place:delete_images"
)

// Queue names, highest priority first.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// ProcessImagePayload asks the worker to render variants of one stored image.
type ProcessImagePayload struct {
	ImageID int64 `json:"image_id"`
}

// DeleteImagesPayload lists storage keys (or a prefix) to remove.
type DeleteImagesPayload struct {
	PlaceID int64    `json:"place_id"`
	Keys    []string `json:"keys,omitempty"`
	Prefix  string   `json:"prefix,omitempty"`
}
