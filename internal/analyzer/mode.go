package analyzer

import (
	"fmt"
	"strings"
)

// Mode selects which summary an analysis call produces.
type Mode string

const (
	// ModeHistogram produces the 256-bucket luminance histogram
	ModeHistogram Mode = "histogram"
	// ModeFocusPeaks produces the indices of in-focus grid blocks
	ModeFocusPeaks Mode = "focus_peaks"
	// ModeEdgeCounts produces the raw edge count of every grid block
	ModeEdgeCounts Mode = "edge_counts"
	// ModeLuma produces the average luminance report
	ModeLuma Mode = "luma"
)

// Modes lists every supported mode in a stable order.
func Modes() []Mode {
	return []Mode{ModeHistogram, ModeFocusPeaks, ModeEdgeCounts, ModeLuma}
}

// ParseMode maps a request path segment or query value to a Mode.
// Matching ignores case, and "-" is accepted in place of "_".
func ParseMode(s string) (Mode, error) {
	normalized := Mode(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, m := range Modes() {
		if m == normalized {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported analysis mode %q", s)
}

// UsesGrid reports whether the mode partitions the frame into focus blocks.
func (m Mode) UsesGrid() bool {
	return m == ModeFocusPeaks || m == ModeEdgeCounts
}
