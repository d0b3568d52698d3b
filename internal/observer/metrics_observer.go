package observer

import (
	"context"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultLatencyWindow is the number of recent analysis latencies kept for
// the summary statistics.
const DefaultLatencyWindow = 1024

// MetricsObserver collects counters and latency statistics from analysis events
type MetricsObserver struct {
	mu sync.RWMutex

	totalAnalyses      int64
	successfulAnalyses int64
	failedAnalyses     int64
	byMode             map[string]int64
	framesFetched      int64
	fetchFailures      int64
	bytesFetched       int64

	// latencies is a ring of recent processing times in milliseconds
	latencies []float64
	next      int
	filled    bool
}

// LatencyStats summarizes the recent latency window in milliseconds.
type LatencyStats struct {
	Samples int     `json:"samples"`
	MeanMs  float64 `json:"mean_ms"`
	StdDev  float64 `json:"stddev_ms"`
	P50Ms   float64 `json:"p50_ms"`
	P95Ms   float64 `json:"p95_ms"`
	MaxMs   float64 `json:"max_ms"`
}

// MetricsSnapshot is a point in time copy of the collected metrics.
type MetricsSnapshot struct {
	TotalAnalyses      int64            `json:"total_analyses"`
	SuccessfulAnalyses int64            `json:"successful_analyses"`
	FailedAnalyses     int64            `json:"failed_analyses"`
	AnalysesByMode     map[string]int64 `json:"analyses_by_mode"`
	FramesFetched      int64            `json:"frames_fetched"`
	FetchFailures      int64            `json:"fetch_failures"`
	BytesFetched       int64            `json:"bytes_fetched"`
	Latency            LatencyStats     `json:"latency"`
}

// NewMetricsObserver creates a metrics observer keeping window latencies
func NewMetricsObserver(window int) *MetricsObserver {
	if window < 1 {
		window = DefaultLatencyWindow
	}
	return &MetricsObserver{
		byMode:    make(map[string]int64),
		latencies: make([]float64, window),
	}
}

// OnEvent handles analysis events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case AnalysisStarted:
		o.totalAnalyses++
		if event.Mode != "" {
			o.byMode[event.Mode]++
		}
	case AnalysisCompleted:
		o.successfulAnalyses++
		o.record(event.ProcessingTime)
	case AnalysisFailed:
		o.failedAnalyses++
		o.record(event.ProcessingTime)
	case FrameFetched:
		o.framesFetched++
		o.bytesFetched += int64(event.Bytes)
	case FrameFetchFailed:
		o.fetchFailures++
	}
}

func (o *MetricsObserver) record(d time.Duration) {
	o.latencies[o.next] = float64(d) / float64(time.Millisecond)
	o.next++
	if o.next == len(o.latencies) {
		o.next = 0
		o.filled = true
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// Snapshot returns current metrics
func (o *MetricsObserver) Snapshot() MetricsSnapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()

	byMode := make(map[string]int64, len(o.byMode))
	for k, v := range o.byMode {
		byMode[k] = v
	}

	n := o.next
	if o.filled {
		n = len(o.latencies)
	}
	samples := make([]float64, n)
	copy(samples, o.latencies[:n])

	return MetricsSnapshot{
		TotalAnalyses:      o.totalAnalyses,
		SuccessfulAnalyses: o.successfulAnalyses,
		FailedAnalyses:     o.failedAnalyses,
		AnalysesByMode:     byMode,
		FramesFetched:      o.framesFetched,
		FetchFailures:      o.fetchFailures,
		BytesFetched:       o.bytesFetched,
		Latency:            summarize(samples),
	}
}

// summarize sorts samples in place.
func summarize(samples []float64) LatencyStats {
	if len(samples) == 0 {
		return LatencyStats{}
	}
	sort.Float64s(samples)

	s := LatencyStats{
		Samples: len(samples),
		P50Ms:   stat.Quantile(0.5, stat.Empirical, samples, nil),
		P95Ms:   stat.Quantile(0.95, stat.Empirical, samples, nil),
		MaxMs:   samples[len(samples)-1],
	}
	if len(samples) == 1 {
		// The unbiased deviation of one sample is undefined.
		s.MeanMs = samples[0]
		return s
	}
	s.MeanMs, s.StdDev = stat.MeanStdDev(samples, nil)
	return s
}
