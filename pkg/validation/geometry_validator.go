package validation

import (
	"errors"
	"fmt"

	"github.com/anime-shed/frame-inspector-go/pkg/models"
)

var (
	// ErrInvalidDimensions is returned when width, height or stride is not positive
	ErrInvalidDimensions = errors.New("Invalid dimensions")

	// ErrStrideTooSmall is returned when a row stride is shorter than the row width
	ErrStrideTooSmall = errors.New("Stride smaller than width")

	// ErrBufferTooSmall matches any *BufferTooSmallError via errors.Is
	ErrBufferTooSmall = errors.New("Buffer too small")
)

// BufferTooSmallError reports a buffer that cannot hold height*stride bytes.
type BufferTooSmallError struct {
	Actual   int
	Expected int
}

// Error implements the error interface
func (e *BufferTooSmallError) Error() string {
	return fmt.Sprintf("Buffer too small. Len: %d, Expected: %d", e.Actual, e.Expected)
}

// Is lets errors.Is match ErrBufferTooSmall
func (e *BufferTooSmallError) Is(target error) bool {
	return target == ErrBufferTooSmall
}

// Geometry holds frame dimensions that passed validation.
type Geometry struct {
	Width  int
	Height int
	Stride int
}

// RequiredSize returns the minimum buffer length for the geometry.
func (g Geometry) RequiredSize() int {
	return g.Height * g.Stride
}

// ValidateGeometry checks caller supplied frame dimensions against the length
// of the buffer that is supposed to hold them.
//
// Checks run in order: positive dimensions, stride covering the row width,
// then buffer length. The first failing check decides the error. The function
// has no side effects.
func ValidateGeometry(width, height, stride int32, bufferLength int) (Geometry, error) {
	if width <= 0 || height <= 0 || stride <= 0 {
		return Geometry{}, ErrInvalidDimensions
	}
	if stride < width {
		return Geometry{}, ErrStrideTooSmall
	}

	g := Geometry{
		Width:  int(width),
		Height: int(height),
		Stride: int(stride),
	}

	// int64 keeps height*stride exact on 32-bit platforms.
	required := int64(height) * int64(stride)
	if int64(bufferLength) < required {
		return Geometry{}, &BufferTooSmallError{Actual: bufferLength, Expected: int(required)}
	}

	return g, nil
}

// NewFrame validates the geometry and returns a view over data.
func NewFrame(data []byte, width, height, stride int32) (models.Frame, error) {
	g, err := ValidateGeometry(width, height, stride, len(data))
	if err != nil {
		return models.Frame{}, err
	}
	return models.Frame{
		Data:   data,
		Width:  g.Width,
		Height: g.Height,
		Stride: g.Stride,
	}, nil
}
