package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

const (
	// DefaultThumbnailWidth is the preview column width.
	DefaultThumbnailWidth = 240
	// DefaultThumbnailHeight is the preview row height.
	DefaultThumbnailHeight = 135

	thumbnailQuality = 80
)

// Thumbnailer resizes frames to a fixed size.
type Thumbnailer struct {
	width   int
	height  int
	quality int
}

// NewThumbnailer returns a Thumbnailer. Non-positive dimensions fall back to
// the defaults.
func NewThumbnailer(width, height int) *Thumbnailer {
	if width <= 0 {
		width = DefaultThumbnailWidth
	}
	if height <= 0 {
		height = DefaultThumbnailHeight
	}
	return &Thumbnailer{width: width, height: height, quality: thumbnailQuality}
}

// Size returns the output dimensions.
func (t *Thumbnailer) Size() (width, height int) {
	return t.width, t.height
}

// Render resizes img to the exact thumbnail size and encodes it as JPEG.
func (t *Thumbnailer) Render(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("thumbnail source is nil")
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("thumbnail source is empty")
	}

	thumb := imaging.Resize(img, t.width, t.height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: t.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
