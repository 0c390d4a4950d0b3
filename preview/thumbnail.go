// Package preview renders small JPEG previews of uploaded images.
package preview

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultSize is the longest edge of a preview in pixels.
const DefaultSize = 320

// Thumbnail decodes the image at path, applies its EXIF orientation and
// scales it so the longest edge is at most maxSize. Smaller images are not
// enlarged.
func Thumbnail(path string, maxSize int) (image.Image, error) {
	if maxSize <= 0 {
		maxSize = DefaultSize
	}
	srcImg, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	bounds := srcImg.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= maxSize && height <= maxSize {
		return srcImg, nil
	}

	w, h := fitWithin(width, height, maxSize)
	return imaging.Resize(srcImg, w, h, imaging.Lanczos), nil
}

// fitWithin scales width x height so the longest edge is maxSize. The short
// edge never drops below one pixel.
func fitWithin(width, height, maxSize int) (int, int) {
	long, short := width, height
	if height > width {
		long, short = height, width
	}
	scaled := short * maxSize / long
	if scaled < 1 {
		scaled = 1
	}
	if height > width {
		return scaled, maxSize
	}
	return maxSize, scaled
}

// DataURI returns the thumbnail as an inline "data:image/jpeg;base64,..." URI.
func DataURI(path string, maxSize int) (string, error) {
	img, err := Thumbnail(path, maxSize)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
