package analyzer

import (
	"errors"
	"strconv"
	"strings"

	"github.com/anime-shed/frame-inspector-go/pkg/models"
)

const (
	// GridSize is the number of focus blocks per row and per column.
	GridSize = 10

	// BlockCount is the number of blocks in the focus grid.
	BlockCount = GridSize * GridSize

	// EdgeThreshold is the gradient magnitude a pixel must exceed to count as
	// an edge. Magnitudes range from 0 to 510.
	EdgeThreshold = 50

	// MinEdgesPerBlock is the edge count at which a block is in focus.
	MinEdgesPerBlock = 10
)

// ErrFrameTooSmallForGrid is returned when the frame is narrower or shorter
// than GridSize pixels.
var ErrFrameTooSmallForGrid = errors.New("Image too small for grid")

// BlockEdgeCounts counts edge pixels in every block of the focus grid.
//
// Block (gx, gy) spans [gx*bw, min((gx+1)*bw, width-1)) horizontally and the
// equivalent range vertically, where bw = width/GridSize. The last column and
// row of blocks therefore absorb the division remainder but stop one pixel
// short of the frame edge. Only the interior of each block is scanned so every
// pixel has its four direct neighbours.
//
// The gradient is a single-tap difference: |right-left| + |below-above|.
// A pixel counts as an edge when that sum is greater than threshold.
func BlockEdgeCounts(frame models.Frame, threshold int) ([BlockCount]int, error) {
	var counts [BlockCount]int

	blockWidth := frame.Width / GridSize
	blockHeight := frame.Height / GridSize
	if blockWidth == 0 || blockHeight == 0 {
		return counts, ErrFrameTooSmallForGrid
	}

	data := frame.Data
	stride := frame.Stride

	for gridY := 0; gridY < GridSize; gridY++ {
		startY := gridY * blockHeight
		endY := min((gridY+1)*blockHeight, frame.Height-1)

		for gridX := 0; gridX < GridSize; gridX++ {
			startX := gridX * blockWidth
			endX := min((gridX+1)*blockWidth, frame.Width-1)

			edges := 0
			for y := startY + 1; y < endY-1; y++ {
				rowStart := y * stride

				for x := startX + 1; x < endX-1; x++ {
					i := rowStart + x

					// Neighbour reads must stay inside the buffer even when the
					// block clamp lets a pixel sit next to its boundary.
					if i+stride+1 >= len(data) || i < stride+1 {
						continue
					}

					gx := absDiff(data[i+1], data[i-1])
					gy := absDiff(data[i+stride], data[i-stride])
					if gx+gy > threshold {
						edges++
					}
				}
			}

			counts[gridY*GridSize+gridX] = edges
		}
	}

	return counts, nil
}

// FocusPeaks returns the row-major indices of the blocks that hold at least
// MinEdgesPerBlock edge pixels, in ascending order. A frame without any
// in-focus block yields an empty, non-nil slice.
func FocusPeaks(frame models.Frame) ([]int, error) {
	counts, err := BlockEdgeCounts(frame, EdgeThreshold)
	if err != nil {
		return nil, err
	}

	peaks := make([]int, 0, BlockCount)
	for index, edges := range counts {
		if edges >= MinEdgesPerBlock {
			peaks = append(peaks, index)
		}
	}
	return peaks, nil
}

// JoinInts encodes values as comma separated decimal integers.
// An empty slice encodes as the empty string.
func JoinInts(values []int) string {
	var sb strings.Builder
	sb.Grow(len(values) * 3)

	for i, v := range values {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

func absDiff(a, b byte) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
