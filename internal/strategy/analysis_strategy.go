package strategy

import (
	"fmt"

	"github.com/anime-shed/frame-inspector-go/internal/analyzer"
	"github.com/anime-shed/frame-inspector-go/pkg/models"
	"github.com/anime-shed/frame-inspector-go/pkg/validation"
)

// AnalysisStrategy produces the textual summary of one validated frame.
type AnalysisStrategy interface {
	AnalyzeFrame(frame models.Frame) (string, error)
	GetStrategyName() string
}

// HistogramStrategy encodes the subsampled brightness histogram.
type HistogramStrategy struct{}

func NewHistogramStrategy() AnalysisStrategy {
	return &HistogramStrategy{}
}

func (s *HistogramStrategy) AnalyzeFrame(frame models.Frame) (string, error) {
	hist := analyzer.ComputeHistogram(frame)
	return hist.String(), nil
}

func (s *HistogramStrategy) GetStrategyName() string {
	return string(analyzer.ModeHistogram)
}

// FocusPeaksStrategy lists the in-focus grid blocks.
type FocusPeaksStrategy struct{}

func NewFocusPeaksStrategy() AnalysisStrategy {
	return &FocusPeaksStrategy{}
}

func (s *FocusPeaksStrategy) AnalyzeFrame(frame models.Frame) (string, error) {
	peaks, err := analyzer.FocusPeaks(frame)
	if err != nil {
		return "", err
	}
	return analyzer.JoinInts(peaks), nil
}

func (s *FocusPeaksStrategy) GetStrategyName() string {
	return string(analyzer.ModeFocusPeaks)
}

// EdgeCountsStrategy reports the raw edge count of every block at the
// focus threshold.
type EdgeCountsStrategy struct{}

func NewEdgeCountsStrategy() AnalysisStrategy {
	return &EdgeCountsStrategy{}
}

func (s *EdgeCountsStrategy) AnalyzeFrame(frame models.Frame) (string, error) {
	counts, err := analyzer.BlockEdgeCounts(frame, analyzer.EdgeThreshold)
	if err != nil {
		return "", err
	}
	return analyzer.JoinInts(counts[:]), nil
}

func (s *EdgeCountsStrategy) GetStrategyName() string {
	return string(analyzer.ModeEdgeCounts)
}

// LumaStrategy reports the average luminance together with the geometry.
type LumaStrategy struct{}

func NewLumaStrategy() AnalysisStrategy {
	return &LumaStrategy{}
}

func (s *LumaStrategy) AnalyzeFrame(frame models.Frame) (string, error) {
	return analyzer.LumaReport(frame), nil
}

func (s *LumaStrategy) GetStrategyName() string {
	return string(analyzer.ModeLuma)
}

// ForMode returns the strategy registered for mode.
func ForMode(mode analyzer.Mode) (AnalysisStrategy, error) {
	switch mode {
	case analyzer.ModeHistogram:
		return NewHistogramStrategy(), nil
	case analyzer.ModeFocusPeaks:
		return NewFocusPeaksStrategy(), nil
	case analyzer.ModeEdgeCounts:
		return NewEdgeCountsStrategy(), nil
	case analyzer.ModeLuma:
		return NewLumaStrategy(), nil
	default:
		return nil, fmt.Errorf("no strategy for mode %q", mode)
	}
}

// AnalysisContext manages the analysis strategy
type AnalysisContext struct {
	strategy AnalysisStrategy
}

// NewAnalysisContext creates a new analysis context
func NewAnalysisContext(strategy AnalysisStrategy) *AnalysisContext {
	return &AnalysisContext{
		strategy: strategy,
	}
}

// SetStrategy changes the analysis strategy
func (c *AnalysisContext) SetStrategy(strategy AnalysisStrategy) {
	c.strategy = strategy
}

// Execute validates the geometry and runs the current strategy over the
// resulting frame view.
func (c *AnalysisContext) Execute(data []byte, width, height, stride int32) (string, error) {
	frame, err := validation.NewFrame(data, width, height, stride)
	if err != nil {
		return "", err
	}
	return c.strategy.AnalyzeFrame(frame)
}

// ExecuteText is Execute rendered as boundary text: the summary on
// success, "Error: <reason>" otherwise.
func (c *AnalysisContext) ExecuteText(data []byte, width, height, stride int32) string {
	out, err := c.Execute(data, width, height, stride)
	if err != nil {
		return ErrorText(err)
	}
	return out
}

// ErrorText renders err the way the text boundary reports failures.
func ErrorText(err error) string {
	return "Error: " + err.Error()
}

// GetCurrentStrategy returns the current strategy name
func (c *AnalysisContext) GetCurrentStrategy() string {
	return c.strategy.GetStrategyName()
}
