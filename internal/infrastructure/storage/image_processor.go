package storage

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Variant names produced by ProcessImage.
const (
	VariantLarge     = "large"
	VariantThumbnail = "thumbnail"
)

type variantBox struct {
	width, height int
}

// ImageProcessor validates uploaded pictures and renders the display variants.
type ImageProcessor struct {
	MaxSize  int64
	Quality  int
	variants map[string]variantBox
}

// NewImageProcessor fits "large" into 1200x800 and "thumbnail" into 300x300.
// Images smaller than a box are never upscaled.
func NewImageProcessor(maxSize int64) *ImageProcessor {
	return &ImageProcessor{
		MaxSize: maxSize,
		Quality: 85,
		variants: map[string]variantBox{
			VariantLarge:     {1200, 800},
			VariantThumbnail: {300, 300},
		},
	}
}

// ValidateImage checks size and that the bytes decode as a supported format.
func (p *ImageProcessor) ValidateImage(data []byte) (string, error) {
	if int64(len(data)) > p.MaxSize {
		return "", fmt.Errorf("image exceeds %d bytes", p.MaxSize)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("not an image: %w", err)
	}
	switch format {
	case "jpeg", "png", "gif", "webp":
		return format, nil
	default:
		return "", fmt.Errorf("image format %s not allowed", format)
	}
}

// ProcessImage returns variant name -> JPEG bytes. EXIF orientation is applied.
func (p *ImageProcessor) ProcessImage(data []byte) (map[string][]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}

	out := make(map[string][]byte, len(p.variants))
	for name, box := range p.variants {
		resized := img
		b := img.Bounds()
		if b.Dx() > box.width || b.Dy() > box.height {
			resized = imaging.Fit(img, box.width, box.height, imaging.Lanczos)
		}

		buf := new(bytes.Buffer)
		if err := imaging.Encode(buf, resized, imaging.JPEG, imaging.JPEGQuality(p.Quality)); err != nil {
			return nil, fmt.Errorf("cannot encode %s: %w", name, err)
		}
		out[name] = buf.Bytes()
	}
	return out, nil
}
