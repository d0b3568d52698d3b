package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anime-shed/frame-inspector-go/internal/analyzer"
	apperrors "github.com/anime-shed/frame-inspector-go/internal/errors"
	"github.com/anime-shed/frame-inspector-go/internal/observer"
	"github.com/anime-shed/frame-inspector-go/internal/repository"
	"github.com/anime-shed/frame-inspector-go/internal/strategy"
	"github.com/anime-shed/frame-inspector-go/pkg/models"
)

// FrameAnalysisService runs frame analyses from every supported source.
//
// Analysis failures (bad geometry, frame too small for the grid) are not Go
// errors here: they produce a record whose Result carries the "Error: ..."
// text and whose StatusCode classifies it. A returned error means the frame
// could not be obtained at all.
type FrameAnalysisService interface {
	AnalyzeRaw(ctx context.Context, mode analyzer.Mode, data []byte, width, height, stride int32) (*models.AnalysisRecord, error)
	AnalyzeRemote(ctx context.Context, mode analyzer.Mode, req models.RemoteFrameRequest) (*models.AnalysisRecord, error)
	AnalyzeStill(ctx context.Context, mode analyzer.Mode, req models.StillRequest) (*models.AnalysisRecord, error)
	AnalyzeBatch(ctx context.Context, req models.BatchRequest) (*models.BatchResponse, error)

	GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error)
	RecentAnalyses(ctx context.Context, limit int) ([]*models.AnalysisRecord, error)
}

// Options tunes the service.
type Options struct {
	// MaxBatchSize caps the number of frames in one batch request
	MaxBatchSize int

	// FetchTimeout bounds a single frame or still download
	FetchTimeout time.Duration

	// Strategies resolves a mode to its strategy. Defaults to strategy.ForMode.
	Strategies func(analyzer.Mode) (strategy.AnalysisStrategy, error)
}

type frameAnalysisService struct {
	frames    repository.FrameRepository
	analyses  repository.AnalysisRepository
	publisher observer.Subject
	pool      *analyzer.WorkerPool
	opts      Options
}

// NewFrameAnalysisService creates a new frame analysis service. The pool must
// already be started.
func NewFrameAnalysisService(
	frames repository.FrameRepository,
	analyses repository.AnalysisRepository,
	publisher observer.Subject,
	pool *analyzer.WorkerPool,
	opts Options,
) FrameAnalysisService {
	if opts.MaxBatchSize < 1 {
		opts.MaxBatchSize = 1
	}
	if opts.Strategies == nil {
		opts.Strategies = strategy.ForMode
	}
	return &frameAnalysisService{
		frames:    frames,
		analyses:  analyses,
		publisher: publisher,
		pool:      pool,
		opts:      opts,
	}
}

func (s *frameAnalysisService) AnalyzeRaw(ctx context.Context, mode analyzer.Mode, data []byte, width, height, stride int32) (*models.AnalysisRecord, error) {
	rec := s.newRecord(mode, "", width, height, stride)
	return s.run(ctx, rec, mode, data)
}

func (s *frameAnalysisService) AnalyzeRemote(ctx context.Context, mode analyzer.Mode, req models.RemoteFrameRequest) (*models.AnalysisRecord, error) {
	if err := s.frames.ValidateFrameRef(req.URL); err != nil {
		return nil, classifyFetchError(err)
	}

	rec := s.newRecord(mode, req.URL, req.Width, req.Height, req.Stride)
	data, err := s.fetch(ctx, rec)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, rec, mode, data)
}

func (s *frameAnalysisService) AnalyzeStill(ctx context.Context, mode analyzer.Mode, req models.StillRequest) (*models.AnalysisRecord, error) {
	if err := s.frames.ValidateFrameRef(req.URL); err != nil {
		return nil, classifyFetchError(err)
	}

	rec := s.newRecord(mode, req.URL, 0, 0, 0)

	fetchCtx, cancel := s.fetchContext(ctx)
	defer cancel()

	start := time.Now()
	gray, meta, err := s.frames.FetchStill(fetchCtx, req.URL)
	if err != nil {
		appErr := classifyFetchError(err)
		s.notify(ctx, rec, observer.FrameFetchFailed, time.Since(start), appErr)
		return nil, appErr
	}
	s.notify(ctx, rec, observer.FrameFetched, time.Since(start), nil, withBytes(meta.Bytes))

	data, width, height, stride, err := grayPlane(gray)
	if err != nil {
		return nil, apperrors.NewValidationError("Image too large", err)
	}
	rec.Width, rec.Height, rec.Stride = width, height, stride
	rec.Still = meta

	return s.run(ctx, rec, mode, data)
}

func (s *frameAnalysisService) AnalyzeBatch(ctx context.Context, req models.BatchRequest) (*models.BatchResponse, error) {
	if len(req.Frames) == 0 {
		return nil, apperrors.NewValidationError("Batch contains no frames", nil)
	}
	if len(req.Frames) > s.opts.MaxBatchSize {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("Batch of %d frames exceeds limit of %d", len(req.Frames), s.opts.MaxBatchSize), nil)
	}

	start := time.Now()
	results := make([]models.AnalysisRecord, len(req.Frames))

	var wg sync.WaitGroup
	for i, frame := range req.Frames {
		wg.Add(1)
		ok := s.pool.Submit(func() {
			defer wg.Done()
			results[i] = s.batchItem(ctx, req.Mode, frame)
		})
		if !ok {
			wg.Done()
			results[i] = s.failedItem(req.Mode, frame, apperrors.NewInternalError("Analysis pool closed", nil))
		}
	}
	wg.Wait()

	resp := &models.BatchResponse{
		Results:           results,
		ProcessingTimeSec: time.Since(start).Seconds(),
	}
	for _, r := range results {
		if r.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	return resp, nil
}

// batchItem analyzes one batch entry. Every failure is folded into the record
// so the batch always reports one result per frame.
func (s *frameAnalysisService) batchItem(ctx context.Context, defaultMode string, frame models.RemoteFrameRequest) models.AnalysisRecord {
	modeName := frame.Mode
	if modeName == "" {
		modeName = defaultMode
	}
	mode, err := analyzer.ParseMode(modeName)
	if err != nil {
		return s.failedItem(modeName, frame, apperrors.NewValidationError(err.Error(), err))
	}

	rec, err := s.AnalyzeRemote(ctx, mode, frame)
	if err != nil {
		return s.failedItem(string(mode), frame, err)
	}
	return *rec
}

func (s *frameAnalysisService) failedItem(mode string, frame models.RemoteFrameRequest, err error) models.AnalysisRecord {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.NewInternalError(err.Error(), err)
	}
	return models.AnalysisRecord{
		ID:         uuid.New().String(),
		Mode:       mode,
		Source:     frame.URL,
		Width:      frame.Width,
		Height:     frame.Height,
		Stride:     frame.Stride,
		Result:     "Error: " + appErr.Message,
		StatusCode: appErr.StatusCode,
		Timestamp:  time.Now().UTC(),
	}
}

func (s *frameAnalysisService) GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	rec, err := s.analyses.GetAnalysis(ctx, id)
	if errors.Is(err, repository.ErrAnalysisNotFound) {
		return nil, apperrors.NewNotFoundError("Analysis not found", err)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to load analysis", err)
	}
	return rec, nil
}

func (s *frameAnalysisService) RecentAnalyses(ctx context.Context, limit int) ([]*models.AnalysisRecord, error) {
	recs, err := s.analyses.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to list analyses", err)
	}
	return recs, nil
}

func (s *frameAnalysisService) newRecord(mode analyzer.Mode, source string, width, height, stride int32) *models.AnalysisRecord {
	return &models.AnalysisRecord{
		ID:     uuid.New().String(),
		Mode:   string(mode),
		Source: source,
		Width:  width,
		Height: height,
		Stride: stride,
	}
}

func (s *frameAnalysisService) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.FetchTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.FetchTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *frameAnalysisService) fetch(ctx context.Context, rec *models.AnalysisRecord) ([]byte, error) {
	fetchCtx, cancel := s.fetchContext(ctx)
	defer cancel()

	start := time.Now()
	data, err := s.frames.FetchFrame(fetchCtx, rec.Source)
	if err != nil {
		appErr := classifyFetchError(err)
		s.notify(ctx, rec, observer.FrameFetchFailed, time.Since(start), appErr)
		return nil, appErr
	}
	s.notify(ctx, rec, observer.FrameFetched, time.Since(start), nil, withBytes(len(data)))
	return data, nil
}

// run validates and analyzes data, then stores and publishes the record.
func (s *frameAnalysisService) run(ctx context.Context, rec *models.AnalysisRecord, mode analyzer.Mode, data []byte) (*models.AnalysisRecord, error) {
	strat, err := s.opts.Strategies(mode)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), err)
	}

	s.notify(ctx, rec, observer.AnalysisStarted, 0, nil)
	start := time.Now()

	out, err := strategy.NewAnalysisContext(strat).Execute(data, rec.Width, rec.Height, rec.Stride)

	elapsed := time.Since(start)
	rec.Timestamp = time.Now().UTC()
	rec.ProcessingTimeSec = elapsed.Seconds()

	if err != nil {
		appErr := classifyFrameError(err)
		rec.Result = strategy.ErrorText(err)
		rec.StatusCode = appErr.StatusCode
		s.notify(ctx, rec, observer.AnalysisFailed, elapsed, appErr)
	} else {
		rec.Success = true
		rec.Result = out
		rec.StatusCode = http.StatusOK
		s.notify(ctx, rec, observer.AnalysisCompleted, elapsed, nil)
	}

	if err := s.analyses.SaveAnalysis(ctx, rec); err != nil {
		return nil, apperrors.NewInternalError("Failed to store analysis", err)
	}
	return rec, nil
}

type eventOption func(*observer.AnalysisEvent)

func withBytes(n int) eventOption {
	return func(e *observer.AnalysisEvent) {
		e.Bytes = n
	}
}

func (s *frameAnalysisService) notify(ctx context.Context, rec *models.AnalysisRecord, typ observer.EventType, elapsed time.Duration, appErr *apperrors.AppError, opts ...eventOption) {
	if s.publisher == nil {
		return
	}
	event := observer.AnalysisEvent{
		EventType:      typ,
		AnalysisID:     rec.ID,
		Timestamp:      time.Now(),
		Mode:           rec.Mode,
		Source:         rec.Source,
		ProcessingTime: elapsed,
		Success:        appErr == nil,
	}
	if appErr != nil {
		event.ErrorMessage = appErr.Message
		event.Metadata = map[string]interface{}{"error_type": string(appErr.Type)}
		if appErr.Details != "" {
			event.Metadata["error_details"] = appErr.Details
		}
	}
	for _, opt := range opts {
		opt(&event)
	}
	s.publisher.NotifyObservers(ctx, event)
}

// grayPlane exposes a decoded still as a raw luma buffer.
func grayPlane(gray *image.Gray) ([]byte, int32, int32, int32, error) {
	b := gray.Bounds()
	if b.Dx() > math.MaxInt32 || b.Dy() > math.MaxInt32 || gray.Stride > math.MaxInt32 {
		return nil, 0, 0, 0, fmt.Errorf("image %dx%d does not fit frame geometry", b.Dx(), b.Dy())
	}
	return gray.Pix, int32(b.Dx()), int32(b.Dy()), int32(gray.Stride), nil
}
