package observer

import (
	"bytes"
	"context"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type countingObserver struct {
	name  string
	count int32
}

func (o *countingObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	atomic.AddInt32(&o.count, 1)
}

func (o *countingObserver) GetObserverName() string { return o.name }

type panickingObserver struct{}

func (panickingObserver) OnEvent(ctx context.Context, event AnalysisEvent) { panic("boom") }
func (panickingObserver) GetObserverName() string                         { return "panicking" }

func TestEventPublisher_SubscribeNotify(t *testing.T) {
	p := NewEventPublisher()
	a := &countingObserver{name: "a"}
	b := &countingObserver{name: "b"}
	p.Subscribe(a)
	p.Subscribe(panickingObserver{})
	p.Subscribe(b)

	p.NotifyObservers(context.Background(), AnalysisEvent{EventType: AnalysisStarted})
	if a.count != 1 || b.count != 1 {
		t.Errorf("Expected both observers notified once despite a panic, got a=%d b=%d", a.count, b.count)
	}

	p.Unsubscribe(a)
	p.NotifyObservers(context.Background(), AnalysisEvent{EventType: AnalysisStarted})
	if a.count != 1 || b.count != 2 {
		t.Errorf("Expected only b notified after unsubscribe, got a=%d b=%d", a.count, b.count)
	}
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)

	o := NewLoggingObserver(log)
	o.OnEvent(context.Background(), AnalysisEvent{
		EventType:      AnalysisFailed,
		AnalysisID:     "abc",
		Mode:           "focus_peaks",
		ProcessingTime: 3 * time.Millisecond,
		ErrorMessage:   "Image too small for grid",
	})

	out := buf.String()
	for _, want := range []string{`"analysis_id":"abc"`, `"mode":"focus_peaks"`, `"error":"Image too small for grid"`, `"level":"warning"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log line to contain %s, got %s", want, out)
		}
	}
}

func TestMetricsObserver_Counters(t *testing.T) {
	m := NewMetricsObserver(8)
	ctx := context.Background()

	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisStarted, Mode: "histogram"})
	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisCompleted, ProcessingTime: 2 * time.Millisecond})
	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisStarted, Mode: "focus_peaks"})
	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisFailed, ProcessingTime: 4 * time.Millisecond})
	m.OnEvent(ctx, AnalysisEvent{EventType: FrameFetched, Bytes: 100})
	m.OnEvent(ctx, AnalysisEvent{EventType: FrameFetchFailed})

	s := m.Snapshot()
	if s.TotalAnalyses != 2 || s.SuccessfulAnalyses != 1 || s.FailedAnalyses != 1 {
		t.Errorf("unexpected analysis counters %+v", s)
	}
	if s.AnalysesByMode["histogram"] != 1 || s.AnalysesByMode["focus_peaks"] != 1 {
		t.Errorf("unexpected per-mode counters %v", s.AnalysesByMode)
	}
	if s.FramesFetched != 1 || s.FetchFailures != 1 || s.BytesFetched != 100 {
		t.Errorf("unexpected fetch counters %+v", s)
	}
	if s.Latency.Samples != 2 || s.Latency.MeanMs != 3 || s.Latency.MaxMs != 4 {
		t.Errorf("unexpected latency stats %+v", s.Latency)
	}
	if math.Abs(s.Latency.StdDev-math.Sqrt2) > 1e-9 {
		t.Errorf("Expected stddev sqrt(2), got %v", s.Latency.StdDev)
	}
}

func TestMetricsObserver_LatencyWindow(t *testing.T) {
	m := NewMetricsObserver(4)
	ctx := context.Background()

	if s := m.Snapshot(); s.Latency.Samples != 0 {
		t.Errorf("Expected empty latency stats, got %+v", s.Latency)
	}

	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisCompleted, ProcessingTime: 7 * time.Millisecond})
	if s := m.Snapshot(); s.Latency.StdDev != 0 || s.Latency.MeanMs != 7 {
		t.Errorf("single sample stats should be finite, got %+v", s.Latency)
	}

	for i := 1; i <= 10; i++ {
		m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisCompleted, ProcessingTime: time.Duration(i) * time.Millisecond})
	}
	s := m.Snapshot()
	if s.Latency.Samples != 4 {
		t.Fatalf("Expected window of 4 samples, got %d", s.Latency.Samples)
	}
	if s.Latency.MaxMs != 10 || s.Latency.P95Ms != 10 {
		t.Errorf("Expected max and p95 of 10ms, got %+v", s.Latency)
	}
	if s.Latency.MeanMs != 8.5 {
		t.Errorf("Expected mean 8.5 over the last four samples, got %v", s.Latency.MeanMs)
	}
}
