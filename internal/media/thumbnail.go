package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// Thumbnail defaults
const (
	DefaultMaxEdge = 800
	DefaultQuality = 85
)

// ThumbnailOptions controls the size and quality of generated thumbnails
type ThumbnailOptions struct {
	MaxEdge uint
	Quality int
}

func (o ThumbnailOptions) withDefaults() ThumbnailOptions {
	if o.MaxEdge == 0 {
		o.MaxEdge = DefaultMaxEdge
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	return o
}

// Thumbnail decodes an image, applies its EXIF orientation, shrinks the longest edge to
// opts.MaxEdge and encodes the result as JPEG
func Thumbnail(data []byte, opts ThumbnailOptions) ([]byte, error) {
	opts = opts.withDefaults()

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error decoding image: %w", err)
	}

	img = Orient(img, Orientation(data))
	img = fit(img, opts.MaxEdge)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("error encoding thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales img so its longest edge is maxEdge. Smaller images are left alone.
func fit(img image.Image, maxEdge uint) image.Image {
	bounds := img.Bounds()
	width := uint(bounds.Dx())
	height := uint(bounds.Dy())

	if width <= maxEdge && height <= maxEdge {
		return img
	}

	var newWidth, newHeight uint
	if width > height {
		newWidth = maxEdge
		newHeight = uint(float64(height) * (float64(maxEdge) / float64(width)))
	} else {
		newHeight = maxEdge
		newWidth = uint(float64(width) * (float64(maxEdge) / float64(height)))
	}
	if newWidth == 0 {
		newWidth = 1
	}
	if newHeight == 0 {
		newHeight = 1
	}

	return resize.Resize(newWidth, newHeight, img, resize.Lanczos3)
}
