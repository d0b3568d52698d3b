package analyzer

import (
	"strconv"
	"strings"

	"github.com/anime-shed/frame-inspector-go/pkg/models"
)

// HistogramSampleStep is the row and column step of the histogram scan.
// Only every 4th pixel of every 4th row is counted, starting at (0, 0).
const HistogramSampleStep = 4

// Histogram counts sampled pixels per luminance value.
type Histogram [256]uint32

// ComputeHistogram builds a luminance histogram from a 4x4 subsampled scan of
// the frame.
//
// The scan stops at the first sampled row whose last byte would fall beyond
// the buffer. That can only happen for a frame that skipped validation.
func ComputeHistogram(frame models.Frame) Histogram {
	var hist Histogram
	data := frame.Data

	for row := 0; row < frame.Height; row += HistogramSampleStep {
		rowStart := row * frame.Stride
		if rowStart+frame.Width > len(data) {
			break
		}

		for col := 0; col < frame.Width; col += HistogramSampleStep {
			hist[data[rowStart+col]]++
		}
	}

	return hist
}

// Total returns the number of sampled pixels.
func (h Histogram) Total() uint64 {
	var total uint64
	for _, count := range h {
		total += uint64(count)
	}
	return total
}

// String encodes the counts as 256 comma separated integers in value order.
func (h Histogram) String() string {
	var sb strings.Builder
	sb.Grow(len(h) * 4)

	buf := make([]byte, 0, 10)
	for i, count := range h {
		if i > 0 {
			sb.WriteByte(',')
		}
		buf = strconv.AppendUint(buf[:0], uint64(count), 10)
		sb.Write(buf)
	}
	return sb.String()
}
