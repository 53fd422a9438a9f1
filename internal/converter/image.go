package converter

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"

	// Register decoders for the formats that appear in media parts.
	_ "image/gif"
)

const scaledJPEGQuality = 85

// ImageScaler downscales raster images that exceed a pixel-width limit
// before they are written to the cache. Scaling is best-effort: anything
// that cannot be decoded or re-encoded passes through untouched, so a
// broken image never fails a conversion.
type ImageScaler struct {
	MaxWidth int
}

// NewImageScaler returns a scaler, or nil when maxWidth disables scaling.
// A nil scaler means cached bytes are byte-identical to the package bytes.
func NewImageScaler(maxWidth int) *ImageScaler {
	if maxWidth <= 0 {
		return nil
	}
	return &ImageScaler{MaxWidth: maxWidth}
}

// Scale returns the image resized to at most MaxWidth pixels wide, or the
// original bytes when no resize applies.
func (s *ImageScaler) Scale(data []byte) []byte {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= s.MaxWidth {
		return data
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	resized := imaging.Resize(src, s.MaxWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: scaledJPEGQuality})
	case "png":
		err = png.Encode(&buf, resized)
	default:
		// Unsupported re-encode target; keep the original.
		return data
	}
	if err != nil {
		return data
	}
	return buf.Bytes()
}
