package media

import (
	"context"
	"image"

	"github.com/disintegration/imaging"

	"dupe-checker/internal/logging"
	"dupe-checker/internal/mediatypes"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp" // WebP format support
)

// StillExtractor decodes image files in-process and hands everything
// else to a fallback Extractor. Images Go cannot decode (HEIC, odd
// TIFF variants) also go to the fallback.
type StillExtractor struct {
	fallback Extractor
}

// NewStillExtractor wraps fallback, usually an FFmpegExtractor.
func NewStillExtractor(fallback Extractor) *StillExtractor {
	return &StillExtractor{fallback: fallback}
}

// Extract ignores offset for still images.
func (s *StillExtractor) Extract(ctx context.Context, path string, offset float64) (image.Image, error) {
	if mediatypes.KindOf(path) == mediatypes.FileTypeImage {
		img, err := imaging.Open(path, imaging.AutoOrientation(true))
		if err == nil {
			return img, nil
		}
		logging.Debug("Direct decode failed for %s, falling back to ffmpeg: %v", path, err)
	}
	return s.fallback.Extract(ctx, path, offset)
}
