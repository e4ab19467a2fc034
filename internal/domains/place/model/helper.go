package model

import "fmt"

// Cache keys
const (
	CacheKeyList    = "places:list"
	CacheKeyPattern = "places:*"
)

func DetailCacheKey(identifier string) string {
	return "places:detail:" + identifier
}

// ImagePrefix is the storage prefix holding every file of a place.
func ImagePrefix(placeID int64) string {
	return fmt.Sprintf("%s%d/", ImageKeyRoot, placeID)
}

// VariantKey names a rendered variant next to its original.
func VariantKey(placeID, imageID int64, variant string) string {
	return fmt.Sprintf("%s%d_%s.jpg", ImagePrefix(placeID), imageID, variant)
}
