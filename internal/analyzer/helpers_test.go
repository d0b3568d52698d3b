package analyzer

import (
	"testing"

	"github.com/anime-shed/frame-inspector-go/pkg/models"
	"github.com/anime-shed/frame-inspector-go/pkg/validation"
)

// newFrame creates a validated frame with every byte, padding included, set to fill
func newFrame(t *testing.T, width, height, stride int, fill byte) models.Frame {
	t.Helper()

	data := make([]byte, height*stride)
	for i := range data {
		data[i] = fill
	}

	frame, err := validation.NewFrame(data, int32(width), int32(height), int32(stride))
	if err != nil {
		t.Fatalf("Failed to create %dx%d frame (stride %d): %v", width, height, stride, err)
	}
	return frame
}

// paintStripes fills the rectangle [x0,x1)x[y0,y1) with 2 pixel wide vertical
// stripes alternating between lo and hi, so every pixel has |right-left| = hi-lo
func paintStripes(frame models.Frame, x0, y0, x1, y1 int, lo, hi byte) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			v := lo
			if (x/2)%2 == 0 {
				v = hi
			}
			frame.Data[y*frame.Stride+x] = v
		}
	}
}
