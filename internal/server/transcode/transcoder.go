// Package transcode normalizes uploaded images into bounded-size JPEGs.
package transcode

import (
	"bytes"
	"fmt"
	"image"

	// Register the decoders for the upload formats we accept.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"

	"github.com/dmitrijs2005/geophoto/internal/common"
)

// Transcoder resizes an image so its longer dimension does not exceed
// MaxDimension, never enlarging a smaller image, and re-encodes it as a
// JPEG at the configured quality. The output byte size is what the owner's
// quota is charged for.
type Transcoder struct {
	maxDimension int
	jpegQuality  int
}

func New(maxDimension, jpegQuality int) *Transcoder {
	return &Transcoder{maxDimension: maxDimension, jpegQuality: jpegQuality}
}

// Transcode decodes data, resizes if needed, and returns the encoded JPEG.
// Inputs that cannot be decoded as an image fail with ErrUnsupportedMedia.
func (t *Transcoder) Transcode(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnsupportedMedia, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if targetW, targetH, ok := t.fit(width, height); ok {
		img = transform.Resize(img, targetW, targetH, transform.Linear)
	}

	var out bytes.Buffer
	if err := imgio.JPEGEncoder(t.jpegQuality)(&out, img); err != nil {
		return nil, fmt.Errorf("jpeg encode error: %w", err)
	}

	return out.Bytes(), nil
}

// fit computes the target dimensions preserving aspect ratio. ok is false
// when the image already fits and must not be enlarged. The scaled short
// side is floored at one pixel so extreme aspect ratios cannot collapse the
// output to an empty image.
func (t *Transcoder) fit(width, height int) (int, int, bool) {
	longer := width
	if height > width {
		longer = height
	}
	if longer <= t.maxDimension {
		return width, height, false
	}

	if width >= height {
		return t.maxDimension, max(height*t.maxDimension/width, 1), true
	}
	return max(width*t.maxDimension/height, 1), t.maxDimension, true
}
