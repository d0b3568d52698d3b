package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// MaxStillPixels bounds the decoded size of an encoded still so a small file
// cannot expand into an unbounded luma plane.
const MaxStillPixels = 64 * 1024 * 1024

// ErrUnsupportedImage is returned for payloads no registered decoder accepts.
var ErrUnsupportedImage = errors.New("unsupported image format")

// DecodeLuma decodes an encoded still (PNG, JPEG, GIF, WebP, BMP, TIFF) into
// an 8-bit luma plane with its origin at (0, 0). EXIF orientation is applied
// first. The returned format is the decoder name.
func DecodeLuma(data []byte) (*image.Gray, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, format, fmt.Errorf("%w: empty %s image", ErrUnsupportedImage, format)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxStillPixels {
		return nil, format, fmt.Errorf("%w: %dx%d %s image", ErrFrameTooLarge, cfg.Width, cfg.Height, format)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, format, fmt.Errorf("%w: decode %s image: %v", ErrUnsupportedImage, format, err)
	}

	return toGray(img), format, nil
}

func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok && b.Min == (image.Point{}) {
		return g
	}

	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}
