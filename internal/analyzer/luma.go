package analyzer

import (
	"fmt"

	"github.com/anime-shed/frame-inspector-go/pkg/models"
)

// AverageLuma returns the integer mean of every pixel in the frame.
//
// Unlike the histogram this scan is not subsampled. Rows whose end would fall
// beyond the buffer stop the scan, and an empty scan averages to 0.
func AverageLuma(frame models.Frame) uint32 {
	var sum, count uint64
	data := frame.Data

	for row := 0; row < frame.Height; row++ {
		rowStart := row * frame.Stride
		rowEnd := rowStart + frame.Width
		if rowEnd > len(data) {
			break
		}

		for _, v := range data[rowStart:rowEnd] {
			sum += uint64(v)
		}
		count += uint64(frame.Width)
	}

	if count == 0 {
		return 0
	}
	return uint32(sum / count)
}

// LumaReport formats the average luminance together with the frame geometry.
func LumaReport(frame models.Frame) string {
	return fmt.Sprintf("LUMA: %d | RES: %dx%d | STRIDE: %d",
		AverageLuma(frame), frame.Width, frame.Height, frame.Stride)
}
